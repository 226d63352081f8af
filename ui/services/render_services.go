package services

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"slices"
	"strings"

	"dataportal/domain/dataset"
	"dataportal/internal/chart"
	"dataportal/ui/templates/fragments"
)

// RenderService executes the page and fragment templates
type RenderService struct {
	templates *template.Template
}

// NewRenderService parses every registered template from fsys. Templates
// are named by their path relative to the templates directory.
func NewRenderService(fsys fs.FS) (*RenderService, error) {
	templates := template.New("").Funcs(FuncMap())

	for _, path := range fragments.GetAllTemplatePaths() {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if _, err := templates.New(path).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
		}
	}

	log.Printf("[TemplateInit] Parsed %d templates", len(fragments.GetAllTemplatePaths()))
	return &RenderService{templates: templates}, nil
}

// Render executes a template into a buffer so a failed render never writes
// a partial response
func (s *RenderService) Render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[ERROR] Failed to render template %s (data %T): %v", name, data, err)
		return nil, err
	}
	return buf.Bytes(), nil
}

// FuncMap returns the helpers available to templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"cell": func(c dataset.Cell) string {
			if c.Null {
				if c.Kind() == dataset.KindNumeric {
					return "NaN"
				}
				return "None"
			}
			return c.String()
		},
		"figure": func(fig *chart.Figure) string {
			data, err := fig.JSON()
			if err != nil {
				log.Printf("[ERROR] Failed to encode figure: %v", err)
				return "{}"
			}
			return string(data)
		},
		"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict needs key/value pairs, got %d arguments", len(pairs))
			}
			m := make(map[string]interface{}, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
		"join":     strings.Join,
		"contains": func(list []string, s string) bool { return slices.Contains(list, s) },
	}
}
