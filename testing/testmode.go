// Package testing switches the process into test mode when imported by a
// test binary, so packages that read configuration never reach real
// services.
package testing

import (
	"os"
	"sync"
)

var defaults = map[string]string{
	"PEPPOL_WEB_TEST_MODE": "1",
	"ODOO_URL":             "http://127.0.0.1:0",
	"ODOO_DB":              "test",
}

var once sync.Once

// Ensure sets the test defaults for variables that are not already set.
func Ensure() {
	once.Do(func() {
		for key, value := range defaults {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	Ensure()
}
