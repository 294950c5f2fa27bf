package main

import (
	"os"

	"github.com/xe-erp/peppol-web/cmd/peppolctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
