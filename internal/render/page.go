package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/page.html narrative.md
var assets embed.FS

var pageTmpl = template.Must(template.ParseFS(assets, "templates/page.html"))

var narrative = sync.OnceValues(func() (template.HTML, error) {
	src, err := assets.ReadFile("narrative.md")
	if err != nil {
		return "", fmt.Errorf("read narrative: %w", err)
	}
	return MarkdownHTML(src)
})

// MarkdownHTML converts trusted markdown to HTML.
func MarkdownHTML(src []byte) (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // embedded narrative, not user input
}

var headings = map[Kind]string{
	KindPlain:      "A map with no data",
	KindScatter:    "Individual fires",
	KindBubble:     "Fires per state",
	KindChoropleth: "Fires per state over time",
	KindTrend:      "Trend per state",
}

type pageFigure struct {
	Kind    Kind
	Heading string
	JSON    template.JS
}

type pageData struct {
	Narrative template.HTML
	Summary   DatasetSummary
	Params    Params
	Libraries []Library
	Notice    string
	Figures   []pageFigure
	Query     template.URL
}

// Page renders the dashboard HTML for one set of widget values. For a
// library without a renderer the page is still written, carrying a notice
// instead of figures, and ErrUnsupportedLibrary is returned so the caller
// can pick the status code.
func Page(w io.Writer, summary DatasetSummary, d Data, p Params) error {
	text, err := narrative()
	if err != nil {
		return err
	}
	page := pageData{
		Narrative: text,
		Summary:   summary,
		Params:    p,
		Libraries: SupportedLibraries,
		Query:     template.URL(p.Query().Encode()), //nolint:gosec // built from validated params
	}

	implErr := p.requireImplemented()
	if implErr != nil {
		page.Notice = fmt.Sprintf("Maps with %s are not implemented yet. Pick plotly to see them.", p.Lib)
	} else {
		for _, kind := range Kinds {
			fig, err := Build(kind, d, p)
			if err != nil {
				return err
			}
			data, err := json.Marshal(fig)
			if err != nil {
				return fmt.Errorf("encode %s figure: %w", kind, err)
			}
			page.Figures = append(page.Figures, pageFigure{
				Kind:    kind,
				Heading: headings[kind],
				JSON:    template.JS(data), //nolint:gosec // json.Marshal escapes HTML characters
			})
		}
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return implErr
}
