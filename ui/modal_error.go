package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorModal reports a startup failure (bad config, locked credentials,
// invalid backend URL) before the chat view exists. Any dismiss key quits.
type ErrorModal struct {
	title, message string
	width, height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{title: title, message: message}
}

func (m ErrorModal) Init() tea.Cmd { return nil }

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if k := msg.String(); k == "enter" || k == "esc" || k == "ctrl+c" || k == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return m.title + ": " + m.message
	}

	modalWidth := fitModalWidth(60, m.width)
	return RenderThreeSectionModal("✗ "+m.title, centeredMessage(m.message, modalWidth),
		FormatFooter("Enter", "Quit"), ModalTypeError, modalWidth, m.width, m.height)
}
