// Package web carries the HTML templates and static assets compiled into the
// binaries.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var Templates embed.FS

//go:embed static
var assets embed.FS

// Static returns the assets rooted at the static directory, ready to be
// served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(assets, "static")
}
