package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType picks the title color of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func (t ModalType) color() lipgloss.Color {
	switch t {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	default:
		return accentColor
	}
}

// fitModalWidth shrinks desired to leave a margin in narrow terminals.
// desired 0 means 60.
func fitModalWidth(desired, width int) int {
	if desired == 0 {
		desired = 60
	}
	if width < desired+10 {
		return width - 10
	}
	return desired
}

// centeredMessage wraps message and centers every line in the modal body.
func centeredMessage(message string, modalWidth int) []string {
	style := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(wordWrap(message, modalWidth-4), "\n") {
		lines = append(lines, style.Render(line))
	}
	return lines
}

// RenderAcknowledgeModal renders a notice dismissed with Enter
func RenderAcknowledgeModal(title, message string, modalType ModalType, width, height int) string {
	modalWidth := fitModalWidth(60, width)
	return RenderThreeSectionModal(title, centeredMessage(message, modalWidth), "Press Enter to acknowledge", modalType, modalWidth, width, height)
}

func renderSpinner(message, spinnerView string, width, height int) string {
	content := lipgloss.NewStyle().
		Width(fitModalWidth(40, width)).
		Align(lipgloss.Center).
		Render(spinnerView + " " + message)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// RenderThreeSectionModal stacks title, body and footer, the lower two
// separated by a rule. messageLines are used as given.
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	modalWidth := fitModalWidth(desiredWidth, width)
	rule := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth)

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(modalType.color()).
		Render(centerTextLine(title, modalWidth))

	blank := strings.Repeat(" ", modalWidth)
	body := make([]string, 0, len(messageLines)+2)
	body = append(body, blank)
	body = append(body, messageLines...)
	body = append(body, blank)
	messageSection := rule.Render(strings.Join(body, "\n"))

	footerSection := rule.
		Foreground(dimColor).
		Align(lipgloss.Center).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// wordWrap wraps on display width and keeps explicit newlines
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	paragraphs := strings.Split(text, "\n")
	for i, paragraph := range paragraphs {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			paragraphs[i] = ""
			continue
		}

		var lines []string
		current := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) > width {
				lines = append(lines, current)
				current = word
				continue
			}
			current += " " + word
		}
		paragraphs[i] = strings.Join(append(lines, current), "\n")
	}

	return strings.Join(paragraphs, "\n")
}
