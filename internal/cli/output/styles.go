package output

import "github.com/charmbracelet/lipgloss"

// Styles is the lipgloss style set used for text mode rendering.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Info    lipgloss.Style
}

// colorStyles returns the style set used on terminals.
func colorStyles() *Styles {
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Underline(true),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

// plainStyles returns passthrough styles so non-terminal output carries no
// ANSI escapes.
func plainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1: plain,
		Header2: plain,
		Bold:    plain,
		Muted:   plain,
		Error:   plain,
		Warning: plain,
		Success: plain,
		Info:    plain,
	}
}
