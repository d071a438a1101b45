package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page names accepted by Renderer.Render
const (
	PageIndex  = "index"
	PageResult = "result"
)

// Renderer holds the parsed page templates
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	return LoadTemplates(assetsFS)
}

// LoadTemplates parses layout.html together with each page from fsys
func LoadTemplates(fsys fs.FS) (*Renderer, error) {
	funcs := template.FuncMap{
		"signed": func(v int) string { return fmt.Sprintf("%+d", v) },
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageResult} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}

	return r, nil
}

// Render executes page with data and writes it with no-store caching. The
// nonce is exposed to templates as .Nonce.
func (r *Renderer) Render(c *gin.Context, status int, page, nonce string, data map[string]any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	if data == nil {
		data = make(map[string]any)
	}
	data["Nonce"] = nonce

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// StaticHandler serves embedded assets with long-lived caching
func StaticHandler(staticFS fs.FS) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(http.FS(staticFS)))

	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
