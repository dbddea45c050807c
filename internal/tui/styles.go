// Package tui desenha o quadro kanban e o pareamento do WhatsApp no terminal.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	toastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(26)
	activeColumnStyle = columnStyle.BorderForeground(lipgloss.Color("212"))

	cardStyle     = lipgloss.NewStyle().PaddingLeft(1)
	selectedStyle = cardStyle.Reverse(true)
	movedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Cores do funil.yaml para cores do terminal.
var stageColors = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("39"),
	"yellow": lipgloss.Color("220"),
	"purple": lipgloss.Color("135"),
	"green":  lipgloss.Color("42"),
	"red":    lipgloss.Color("203"),
}

func stageTitle(title, color string) string {
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := stageColors[color]; ok {
		style = style.Foreground(c)
	}
	return style.Render(title)
}
