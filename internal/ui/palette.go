package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Default colors for title, success, error, warning and hint text.
const (
	TitleColor = "#7D56F4"
	OKColor    = "#04B575"
	ErrColor   = "#FF0000"
	WarnColor  = "#FFA500"
	HintColor  = "#626262"
)

// Painter colors text with [lipgloss] styles.
type Painter interface {
	Title(string) string
	OK(string) string
	Err(string) string
	Warn(string) string
	Hint(string) string
}

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	hint  lipgloss.Style
}

var _ Painter = (*Palette)(nil)

// NewPalette returns the default palette rendering for w.
func NewPalette(w io.Writer) *Palette {
	return NewCustomPalette(w, TitleColor, OKColor, ErrColor, WarnColor, HintColor)
}

// NewCustomPalette builds a palette from hex colors t, s, e, w and h.
func NewCustomPalette(out io.Writer, t, s, e, w, h string) *Palette {
	r := lipgloss.NewRenderer(out)
	return &Palette{
		title: NewBold(r, t),
		ok:    NewBold(r, s),
		err:   NewBold(r, e),
		warn:  NewStyle(r, w),
		hint:  NewEm(r, h),
	}
}

func NewStyle(r *lipgloss.Renderer, fg string) lipgloss.Style {
	return r.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(r *lipgloss.Renderer, fg string) lipgloss.Style {
	return NewStyle(r, fg).Bold(true)
}

func NewEm(r *lipgloss.Renderer, fg string) lipgloss.Style {
	return NewStyle(r, fg).Italic(true)
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string { return p.ok.Render(s) }
func (p *Palette) Err(s string) string { return p.err.Render(s) }
func (p *Palette) Warn(s string) string { return p.warn.Render(s) }
func (p *Palette) Hint(s string) string { return p.hint.Render(s) }

// Mark returns a styled check mark for ok, or a cross.
func (p *Palette) Mark(ok bool) string {
	if ok {
		return p.OK("✓")
	}
	return p.Err("✗")
}
