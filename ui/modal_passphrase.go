package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dealchat/config"
)

const (
	emptyPassphraseError     = "Passphrase cannot be empty"
	incorrectPassphraseError = "Incorrect passphrase. Please try again."
)

// PassphraseModal prompts for the SSH key passphrase that seals the API
// token. Unlock runs on Enter, so a wrong passphrase can be retried in place.
type PassphraseModal struct {
	keyPath   string
	input     textinput.Model
	err       string
	width     int
	height    int
	cancelled bool
	unlocked  bool

	unlock func(passphrase string) error
}

func NewPassphraseModal(keyPath string, unlock func(passphrase string) error) PassphraseModal {
	input := textinput.New()
	input.Placeholder = "Enter passphrase"
	input.Width = 50
	input.CharLimit = 200
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.Focus()

	return PassphraseModal{
		keyPath: keyPath,
		input:   input,
		unlock:  unlock,
	}
}

func (m PassphraseModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m PassphraseModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.input.Value() == "" {
				m.err = emptyPassphraseError
				return m, nil
			}
			if m.unlock != nil {
				if err := m.unlock(m.input.Value()); err != nil {
					m.err = incorrectPassphraseError
					m.input.SetValue("")
					return m, nil
				}
			}
			m.unlocked = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PassphraseModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	modalWidth := 70
	if m.width < modalWidth+10 {
		modalWidth = max(m.width-10, 10)
	}

	blank := strings.Repeat(" ", modalWidth)
	lines := []string{
		blank,
		centerTextLine("Your API token is sealed with an encrypted SSH key.", modalWidth),
		centerTextLine(fmt.Sprintf("Key: %s", m.keyPath), modalWidth),
		centerTextLine("Please enter the passphrase:", modalWidth),
		blank,
		centerTextLine(m.input.View(), modalWidth),
		blank,
	}
	if m.err != "" {
		styledErr := lipgloss.NewStyle().Foreground(dangerColor).Bold(true).Render("⚠ " + m.err)
		lines = append(lines, centerTextLine(styledErr, modalWidth), blank)
	}

	return RenderThreeSectionModal("SSH Key Passphrase Required", lines,
		FormatFooter("Enter", "Unlock", "Esc", "Cancel"), ModalTypeInfo, modalWidth, m.width, m.height)
}

// IsCancelled reports whether the user pressed Esc
func (m PassphraseModal) IsCancelled() bool {
	return m.cancelled
}

func (m PassphraseModal) Unlocked() bool {
	return m.unlocked
}

func centerTextLine(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}

	leftPad := (width - textWidth) / 2
	return strings.Repeat(" ", leftPad) + text + strings.Repeat(" ", width-textWidth-leftPad)
}

// LoadCredentialsWithPassphrase unlocks the credential store with the given
// passphrase and fills cfg.APIToken. A wrong passphrase returns an error.
func LoadCredentialsWithPassphrase(cfg *config.Config, passphrase string) error {
	if cfg == nil {
		return fmt.Errorf("invalid config - cannot set passphrase")
	}

	if err := cfg.LoadAPIToken(passphrase); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Passphrase] Failed to load credentials: %v", err)
		}
		return err
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Passphrase] Credentials unlocked")
	}
	return nil
}
