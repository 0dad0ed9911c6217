package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/casparctl/amcp/amcpprotocol"
)

var (
	colorRed    = lipgloss.Color("#FF0000")
	colorGreen  = lipgloss.Color("#00FF00")
	colorYellow = lipgloss.Color("#FFFF00")
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGray   = lipgloss.Color("#666666")
)

// styles renders console output. A renderer bound to the output writer
// drops colour when the writer is not a terminal; plain disables styling
// altogether.
type styles struct {
	plain bool

	ok     lipgloss.Style
	info   lipgloss.Style
	err    lipgloss.Style
	notice lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(w io.Writer, plain bool) styles {
	if plain {
		return styles{plain: true}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:     r.NewStyle().Foreground(colorGreen),
		info:   r.NewStyle().Foreground(colorCyan),
		err:    r.NewStyle().Foreground(colorRed).Bold(true),
		notice: r.NewStyle().Foreground(colorYellow),
		dim:    r.NewStyle().Foreground(colorGray),
	}
}

// header picks the style for a response's status line.
func (s styles) header(resp amcpprotocol.Response) lipgloss.Style {
	switch {
	case resp.IsError():
		return s.err
	case resp.IsInfo():
		return s.info
	case resp.IsOK():
		return s.ok
	default:
		return s.dim
	}
}

// paint renders a single line of text in style.
func (s styles) paint(style lipgloss.Style, text string) string {
	if s.plain || text == "" {
		return text
	}
	return style.Render(text)
}
