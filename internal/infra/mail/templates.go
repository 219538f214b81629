package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

var statusColors = map[entity.LeadStatus]string{
	entity.StatusReviewed:  "#f59e0b",
	entity.StatusContacted: "#8b5cf6",
	entity.StatusClosed:    "#10b981",
}

var funcs = template.FuncMap{
	"fallback": fallback,
	"upper":    func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
	"statusColor": func(s entity.LeadStatus) string {
		if c, ok := statusColors[s]; ok {
			return c
		}
		return "#3b82f6"
	},
	"stamp": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006 15:04 MST") },
}

// Templates renders the HTML body of each notification event.
type Templates struct {
	set *template.Template
}

func NewTemplates() (*Templates, error) {
	set, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("erro ao ler templates de email: %w", err)
	}
	return &Templates{set: set}, nil
}

func (t *Templates) Render(event entity.EventType, view usecase.NotificationView) (string, error) {
	name := string(event) + ".html"
	if t.set.Lookup(name) == nil {
		return "", fmt.Errorf("no email template for %s", event)
	}

	var body bytes.Buffer
	if err := t.set.ExecuteTemplate(&body, name, view); err != nil {
		return "", fmt.Errorf("erro ao processar template %s: %w", name, err)
	}
	return body.String(), nil
}

// fallback prints v, or def when v is empty or a nil pointer.
func fallback(v any, def string) string {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		if strings.TrimSpace(x) == "" {
			return def
		}
		return x
	case *string:
		if x == nil || strings.TrimSpace(*x) == "" {
			return def
		}
		return *x
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
