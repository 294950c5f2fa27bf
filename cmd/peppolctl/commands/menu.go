package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/spf13/cobra"

	"github.com/xe-erp/peppol-web/internal/app"
	"github.com/xe-erp/peppol-web/internal/usermenu"
)

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the user menu after exclusions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			menu, err := app.NewUserMenu(cfg)
			if err != nil {
				return err
			}
			printMenu(cmd.OutOrStdout(), menu)
			return nil
		},
	}
}

func printMenu(out io.Writer, menu *usermenu.Registry) {
	t := newTable(out, "Seq", "Key", "Kind", "Label")
	for _, item := range menu.Items() {
		t.AppendRow(table.Row{item.Sequence, item.Key, item.Kind, item.Label})
	}
	t.Render()
	if excluded := menu.Excluded(); len(excluded) > 0 {
		fmt.Fprintf(out, "excluded: %s\n", strings.Join(excluded, ", "))
	}
}
