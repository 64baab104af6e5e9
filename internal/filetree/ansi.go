package filetree

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the lipgloss styles used for the terminal form.
type Theme struct {
	Gutter lipgloss.Style
	Guide  lipgloss.Style
	Folder lipgloss.Style
	File   lipgloss.Style
	Info   lipgloss.Style
	Cursor lipgloss.Style
}

// DefaultTheme mirrors the web view: dimmed gutter and guides, bold folders.
func DefaultTheme() Theme {
	return Theme{
		Gutter: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Guide:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Folder: lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		File:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		Cursor: lipgloss.NewStyle().Background(lipgloss.Color("237")),
	}
}

// PlainTheme applies no styling.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Gutter: s, Guide: s, Folder: s, File: s, Info: s, Cursor: s}
}

// GutterWidth returns the width needed for the line-number column.
func (o *Output) GutterWidth() int {
	return len(strconv.Itoa(len(o.LineNumbers)))
}

// FormatLine renders line i of the decorated form with its gutter.
func (t Theme) FormatLine(o *Output, i int) string {
	line := o.Lines[i]
	num := fmt.Sprintf("%*d", o.GutterWidth(), o.LineNumbers[i])

	var b strings.Builder
	b.WriteString(t.Gutter.Render(num))
	b.WriteString("  ")
	if line.Prefix != "" {
		b.WriteString(t.Guide.Render(line.Prefix))
	}
	b.WriteString(line.Icon.Emoji())
	b.WriteByte(' ')
	switch {
	case line.Info:
		b.WriteString(t.Info.Render(line.Name))
	case line.Icon == IconFolder:
		b.WriteString(t.Folder.Render(line.Name))
	default:
		b.WriteString(t.File.Render(line.Name))
	}
	return b.String()
}

// Lines renders every decorated line for a terminal.
func (t Theme) Lines(o *Output) []string {
	out := make([]string, len(o.Lines))
	for i := range o.Lines {
		out[i] = t.FormatLine(o, i)
	}
	return out
}

// WriteANSI writes the decorated form with its line-number gutter.
func WriteANSI(w io.Writer, o *Output, t Theme) error {
	for _, line := range t.Lines(o) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
