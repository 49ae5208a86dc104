package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joestump/tagboard/internal/build"
	"github.com/joestump/tagboard/web"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Title   string
	Flash   *Flash
	Version string
}

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// pageCache maps a render key (e.g. "tags/index.html") to a compiled
// template set containing base.html + partials + that one page file.
// Each page gets its own set so {{define "content"}} blocks don't collide.
var (
	pageCache    map[string]*template.Template
	fragmentTmpl *template.Template
)

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}

	// Standalone set for HTMX fragment rendering (partials only).
	fragmentTmpl = template.Must(template.New("").Funcs(funcs).ParseFS(web.TemplateFS, partials...))

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		rel, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[filepath.ToSlash(rel)] = t
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

func newBasePage(title string, flash *Flash) BasePage {
	return BasePage{Title: title, Flash: flash, Version: build.Version}
}

// isHTMX returns true when the request was sent by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// htmxTarget returns the id of the element HTMX will swap, if any.
func htmxTarget(r *http.Request) string {
	return r.Header.Get("HX-Target")
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	execute(w, status, t, "base", data)
}

// renderFragment executes a named template from the partials set.
func renderFragment(w http.ResponseWriter, status int, tmpl string, data any) {
	execute(w, status, fragmentTmpl, tmpl, data)
}

// execute buffers the output; nothing is written if the template fails.
func execute(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}
