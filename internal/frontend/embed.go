package frontend

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var assetsFS embed.FS

// StaticFS returns the embedded static asset filesystem rooted at static/
func StaticFS() (fs.FS, error) {
	return fs.Sub(assetsFS, "static")
}
