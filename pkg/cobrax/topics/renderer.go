package topics

import (
	"github.com/charmbracelet/glamour"
)

// Renderer formats a topic body. format is the topic file extension.
type Renderer interface {
	Render(content string, format string) string
}

// RendererFunc adapts a plain function to Renderer
type RendererFunc func(content string, format string) string

func (f RendererFunc) Render(content string, format string) string {
	return f(content, format)
}

// PlainRenderer returns topic bodies unchanged
var PlainRenderer = RendererFunc(func(content string, _ string) string { return content })

// GlamourRenderer renders markdown topics for the terminal
type GlamourRenderer struct {
	Style string // "dark", "light", "notty", "auto", or path to a custom style
	Width int    // word-wrap width, 0 leaves glamour's default
}

// NewGlamourRenderer creates a markdown renderer. Output that is not a
// terminal gets the unstyled "notty" look.
func NewGlamourRenderer(terminal bool) *GlamourRenderer {
	style := "auto"
	if !terminal {
		style = "notty"
	}
	return &GlamourRenderer{Style: style}
}

// Render formats markdown; other formats and render failures pass through
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	switch r.Style {
	case "", "auto":
		options = append(options, glamour.WithAutoStyle())
	case "dark", "light", "notty", "dracula", "ascii":
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
