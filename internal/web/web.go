// Package web holds the embedded HTML templates.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page and partial with the helper funcs used by
// the pages. Deadlines are shown in loc.
func Templates(loc *time.Location) (*template.Template, error) {
	funcs := template.FuncMap{
		"datetime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(loc).Format("Jan 2, 2006, 15:04")
		},
		"date": func(t time.Time) string {
			return t.In(loc).Format("Jan 2, 2006")
		},
		"overdue": func(t *time.Time, done bool) bool {
			return t != nil && !done && t.Before(time.Now())
		},
	}
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
