// Package view renders HTML pages from the embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
	"github.com/aussiebroadwan/tenantry/internal/web/nav"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
)

//go:embed templates
var templatesFS embed.FS

const (
	LayoutApplication = "application"
	LayoutErrors      = "errors"
)

// Page is what every template sees. Data carries the per-page values.
type Page struct {
	Layout   string
	Template string
	Title    string

	CurrentUser *domain.User
	Account     *domain.Account
	Menus       nav.Menus
	NavbarItem  string
	SidebarItem string
	Breadcrumbs nav.Breadcrumbs
	Flash       httpx.Flash
	CSRFToken   string

	Data any
}

// Renderer writes a page inside a layout.
type Renderer interface {
	Render(w http.ResponseWriter, status int, layout, name string, p *Page) error
}

// Templates renders the embedded template set. Each page is parsed together
// with the layouts and partials so pages can define their own "content".
type Templates struct {
	pages map[string]*template.Template
}

// Load parses every embedded template.
func Load() (*Templates, error) {
	root, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	return Parse(root)
}

// Parse builds the template set from root, which must hold layouts/ and
// partials/ next to the page directories.
func Parse(root fs.FS) (*Templates, error) {
	base := template.New("").Funcs(Funcs())

	var shared, pages []string
	err := fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		switch {
		case strings.HasPrefix(p, "layouts/"), strings.HasPrefix(p, "partials/"):
			shared = append(shared, p)
		default:
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk templates: %w", err)
	}

	for _, p := range shared {
		if err := parseNamed(base, root, p); err != nil {
			return nil, err
		}
	}

	t := &Templates{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		set, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if err := parseNamed(set, root, p); err != nil {
			return nil, err
		}
		t.pages[strings.TrimSuffix(p, ".html")] = set
	}
	return t, nil
}

// parseNamed adds file p to set under its path without the extension.
func parseNamed(set *template.Template, root fs.FS, p string) error {
	b, err := fs.ReadFile(root, p)
	if err != nil {
		return err
	}
	if _, err := set.New(strings.TrimSuffix(p, ".html")).Parse(string(b)); err != nil {
		return fmt.Errorf("parse %s: %w", p, err)
	}
	return nil
}

func (t *Templates) Render(w http.ResponseWriter, status int, layout, name string, p *Page) error {
	set, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	if p == nil {
		p = &Page{}
	}
	p.Layout, p.Template = layout, name

	// Only the page's own body is rendered first so the layout can use it.
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	content := template.HTML(buf.String()) // already escaped by html/template

	buf.Reset()
	if err := set.ExecuteTemplate(&buf, "layouts/"+layout, layoutData{Page: p, Content: content}); err != nil {
		return fmt.Errorf("render layout %s: %w", layout, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

type layoutData struct {
	*Page
	Content template.HTML
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"userPath":   nav.UserPath,
		"tenantPath": nav.TenantPath,
		"pageURL":    pageURL,
	}
}

// pageURL sets the page query parameter on base.
func pageURL(base string, n int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}
