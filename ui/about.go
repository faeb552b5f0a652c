package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var features = []string{
	"• Chat with your deal assistant from the terminal",
	"• Every irreversible change waits for your y/n",
	"• Conversations are kept server-side, listed offline from cache",
	"• Export any conversation to JSON",
}

func renderAboutModal(width, height int, version, license string) string {
	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	sb.WriteString(titleStyle.Render("dealchat"))
	sb.WriteString("\n\n")

	featureStyle := lipgloss.NewStyle().Foreground(dimColor)
	for _, feature := range features {
		sb.WriteString(featureStyle.Render(feature))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	sb.WriteString(labelStyle.Render("Version: "))
	sb.WriteString(featureStyle.Render(version))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("License: "))
	sb.WriteString(featureStyle.Render(license))
	sb.WriteString("\n\n")

	sb.WriteString(featureStyle.Render("Press Esc or Alt+A to close"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}
