package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/forms"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// loadTemplates parses the page templates. An empty dir uses the embedded set.
// It returns a map keyed by logical template name ("circuit", "results").
func loadTemplates(dir string) (map[string]*template.Template, error) {
	var fsys fs.FS
	if strings.TrimSpace(dir) == "" {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("open embedded templates: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	funcs := template.FuncMap{
		"targetLabel": forms.TargetOptionLabel,
	}

	templates := make(map[string]*template.Template, 2)
	for _, name := range []string{"circuit", "results"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, "base.tmpl", name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
