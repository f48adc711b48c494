package markup

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Term renders colours as ANSI escapes for a terminal. Click regions have no
// terminal equivalent and are dropped.
type Term struct {
	r   *lipgloss.Renderer
	gap lipgloss.Style
}

// NewTerm renders for whatever terminal is on stdout.
func NewTerm() Term { return NewTermWithRenderer(lipgloss.NewRenderer(os.Stdout)) }

func NewTermWithRenderer(r *lipgloss.Renderer) Term {
	return Term{
		r:   r,
		gap: r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

func (Term) Name() string { return "term" }

func (t Term) Wrap(kind Kind, payload, inner string) string {
	switch kind {
	case Background:
		return t.r.NewStyle().Background(lipgloss.Color(payload)).Render(inner)
	case Foreground:
		return t.r.NewStyle().Foreground(lipgloss.Color(payload)).Render(inner)
	}
	return inner
}

func (t Term) Align(a Alignment) string {
	if a == Left {
		return ""
	}
	return t.gap.Render(" │ ")
}
