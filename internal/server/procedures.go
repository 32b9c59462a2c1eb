package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var proceduresTemplate = template.Must(template.New("procedures").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Support Procedures</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
pre { background: #f6f8fa; padding: 1rem; border-radius: 6px; overflow-x: auto; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>`))

// handleProcedures renders the SOP document as HTML. The render is cached:
// the document is static for the process lifetime.
func (s *Server) handleProcedures(w http.ResponseWriter, r *http.Request) {
	page, err := s.renderProcedures()
	if err != nil {
		http.Error(w, "procedures unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) renderProcedures() ([]byte, error) {
	s.proceduresOnce.Do(func() {
		s.proceduresPage, s.proceduresErr = renderMarkdownPage(s.cfg.SOPPath)
	})
	return s.proceduresPage, s.proceduresErr
}

func renderMarkdownPage(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SOP document: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var body bytes.Buffer
	if err := md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("rendering SOP document: %w", err)
	}

	var page bytes.Buffer
	err = proceduresTemplate.Execute(&page, struct{ Content template.HTML }{
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering procedures page: %w", err)
	}
	return page.Bytes(), nil
}
