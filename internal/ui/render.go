package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"policy-chat/internal/markup"
)

// StyleAuto picks a dark or light theme from the terminal background
const StyleAuto = "auto"

// Renderer turns agent replies into styled terminal text
type Renderer struct {
	style string

	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

// NewRenderer creates a renderer using a glamour style name or path
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = StyleAuto
	}
	return &Renderer{
		style: style,
		cache: make(map[int]*glamour.TermRenderer),
	}
}

// Agent renders an agent reply at the given width. Inline markup is
// interpreted; if rendering fails the converted Markdown is returned.
func (r *Renderer) Agent(text string, width int) string {
	md := markup.ToMarkdown(text)
	tr := r.term(width)
	if tr == nil {
		return md
	}
	rendered, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(rendered, "\n")
}

func (r *Renderer) term(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.cache[width]; ok {
		return tr
	}

	styleOpt := glamour.WithStylePath(r.style)
	if r.style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}
	tr, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	r.cache[width] = tr
	return tr
}
