package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"dealchat/api"
	"dealchat/storage"
)

// ConversationListState backs the conversation list modal.
type ConversationListState struct {
	items       []api.ConversationSummary
	filtered    []api.ConversationSummary
	selectedIdx int
	filterMode  bool
	filterInput textinput.Model
	loading     bool
	cached      bool // items came from the local cache
	exporting   bool
}

func (s *ConversationListState) setItems(items []api.ConversationSummary, cached bool) {
	s.items = items
	s.cached = cached
	s.loading = false
	s.applyFilter()
}

// visible returns the items currently shown, honouring the filter
func (s ConversationListState) visible() []api.ConversationSummary {
	if s.filterMode {
		return s.filtered
	}
	return s.items
}

func (s *ConversationListState) applyFilter() {
	value := s.filterInput.Value()
	if !s.filterMode || value == "" {
		s.filtered = s.items
	} else {
		targets := make([]string, len(s.items))
		for i, c := range s.items {
			targets[i] = conversationDisplayTitle(c)
		}

		matches := fuzzy.Find(value, targets)
		s.filtered = make([]api.ConversationSummary, len(matches))
		for i, match := range matches {
			s.filtered[i] = s.items[match.Index]
		}
	}
	s.clampSelection()
}

func (s *ConversationListState) clampSelection() {
	n := len(s.visible())
	if s.selectedIdx >= n {
		s.selectedIdx = n - 1
	}
	if s.selectedIdx < 0 {
		s.selectedIdx = 0
	}
}

func (s ConversationListState) selected() (api.ConversationSummary, bool) {
	list := s.visible()
	if s.selectedIdx < 0 || s.selectedIdx >= len(list) {
		return api.ConversationSummary{}, false
	}
	return list[s.selectedIdx], true
}

func (s *ConversationListState) moveSelection(delta int) {
	s.selectedIdx += delta
	s.clampSelection()
}

func conversationDisplayTitle(c api.ConversationSummary) string {
	return storage.ConversationTitle(c)
}

func renderConversationList(state ConversationListState, currentID string, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	modalHeight := height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Conversations")

	displayList := state.visible()

	// Header: show filter input or count
	var header string
	switch {
	case state.filterMode:
		header = state.filterInput.View()
	case state.loading && len(state.items) == 0:
		header = "Loading..."
	case len(state.items) == len(displayList):
		header = fmt.Sprintf("%d conversations", len(state.items))
	default:
		header = fmt.Sprintf("%d of %d conversations", len(displayList), len(state.items))
	}
	if state.cached && !state.filterMode {
		header += lipgloss.NewStyle().Foreground(warningColor).Render("  (offline, cached)")
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var lines []string
	maxLines := modalHeight - 8 // Reserve space for title, borders, header, footer

	if len(displayList) == 0 {
		emptyMsg := "No conversations yet. Start chatting to create one!"
		if state.filterMode {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx, endIdx := scrollWindow(len(displayList), state.selectedIdx, maxLines)
		for i := startIdx; i < endIdx; i++ {
			lines = append(lines, renderConversationLine(displayList[i], i == state.selectedIdx, displayList[i].ID == currentID, modalWidth))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	lines = append([]string{emptyLine}, lines...)
	lines = append(lines, emptyLine)

	var footerText string
	switch {
	case state.filterMode:
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Load", "Esc", "Cancel")
	default:
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Load", "r", "Refresh", "x", "Export", "d", "Delete", "Esc", "Exit")
	}
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection}
	sections = append(sections, lines...)
	sections = append(sections, footerSection)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

// scrollWindow keeps the selection roughly centred in a list of n items
func scrollWindow(n, selected, maxLines int) (int, int) {
	if maxLines <= 0 || n <= maxLines {
		return 0, n
	}
	switch {
	case selected < maxLines/2:
		return 0, maxLines
	case selected >= n-maxLines/2:
		return n - maxLines, n
	default:
		start := selected - maxLines/2
		return start, start + maxLines
	}
}

func renderConversationLine(c api.ConversationSummary, selected, current bool, modalWidth int) string {
	indicator := "  "
	if selected {
		indicator = "▶ "
	}

	msgCount := fmt.Sprintf("%d msgs", c.MessageCount)
	if c.MessageCount == 1 {
		msgCount = "1 msg"
	}
	rightSide := fmt.Sprintf("%s  %8s", msgCount, formatTimeAgo(c.UpdatedAt))

	marker := ""
	if current {
		marker = " (current)"
	}

	// Widths are measured before styling so ANSI codes don't count
	maxNameWidth := modalWidth - 8 - runewidth.StringWidth(indicator) - runewidth.StringWidth(rightSide) - runewidth.StringWidth(marker)
	name := conversationDisplayTitle(c)
	if maxNameWidth > 3 && runewidth.StringWidth(name) > maxNameWidth {
		name = runewidth.Truncate(name, maxNameWidth, "...")
	}

	spacing := modalWidth - 4 - runewidth.StringWidth(indicator) - runewidth.StringWidth(name) - runewidth.StringWidth(marker) - runewidth.StringWidth(rightSide)
	if spacing < 2 {
		spacing = 2
	}

	style := lipgloss.NewStyle()
	switch {
	case selected:
		style = style.Foreground(successColor).Bold(true)
	case current:
		style = style.Foreground(accentColor).Bold(true)
	}

	line := fmt.Sprintf("  %s%s%s%s%s  ",
		indicator,
		style.Render(name),
		style.Render(marker),
		strings.Repeat(" ", spacing),
		style.Render(rightSide),
	)
	return lipgloss.NewStyle().Width(modalWidth).Render(line)
}

func renderDeleteConfirmation(c api.ConversationSummary, width, height int) string {
	modalWidth := fitModalWidth(60, width)
	lines := centeredMessage(fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"", conversationDisplayTitle(c)), modalWidth)
	lines = append(lines, "", lipgloss.NewStyle().
		Foreground(dangerColor).
		Width(modalWidth).
		Align(lipgloss.Center).
		Render("This action cannot be undone."))

	return RenderThreeSectionModal("⚠ Delete Conversation", lines, FormatFooter("y", "Delete", "n", "Keep"), ModalTypeWarning, modalWidth, width, height)
}

// formatTimeAgo formats a time as a relative string (e.g., "2h ago", "3d ago")
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	default:
		return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
	}
}
