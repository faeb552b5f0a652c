package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("dealchat - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	row := func(k, desc string) string {
		return fmt.Sprintf("• %-13s %s", k, desc)
	}

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		row("Alt+N", "New chat"),
		row("Alt+S", "Conversations"),
		row("Alt+A", "About"),
		row("Alt+H", "Toggle this help"),
		row("Alt+Q", "Quit"),
	)

	confirmations := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Confirmations"),
		row("y", "Confirm the proposed change"),
		row("n", "Cancel the proposed change"),
		row("Alt+N", "Abandon it and start over"),
	)

	chatNavigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Navigation"),
		row("Alt+J/K", "Scroll down/up 1 line"),
		row("Alt+D/U", "Half page down/up"),
		row("PgDn/PgUp", "Full page down/up"),
		row("Alt+G", "Jump to top"),
		row("Alt+Shift+G", "Jump to bottom"),
	)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Actions"),
		row("Enter", "Send message"),
		row("Alt+Enter", "New line"),
		row("Alt+Y", "Copy last response"),
	)

	column1 := lipgloss.JoinVertical(lipgloss.Left, globalActions, "", confirmations)
	column2 := lipgloss.JoinVertical(lipgloss.Left, chatNavigation, "", chatActions)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render("Press Alt+H or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
