package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typePassphrase(m PassphraseModal, s string) PassphraseModal {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return updated.(PassphraseModal)
}

func TestPassphraseModalRetriesWrongPassphrase(t *testing.T) {
	var tried []string
	m := NewPassphraseModal("~/.ssh/id_ed25519", func(p string) error {
		tried = append(tried, p)
		if p != "right" {
			return errors.New("bad passphrase")
		}
		return nil
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(PassphraseModal)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(PassphraseModal)
	if m.err != emptyPassphraseError || len(tried) != 0 {
		t.Fatalf("empty passphrase should not be tried, err=%q tried=%v", m.err, tried)
	}

	m = typePassphrase(m, "wrong")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(PassphraseModal)
	if cmd != nil || m.Unlocked() {
		t.Fatal("wrong passphrase must keep the prompt open")
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after a failed unlock")
	}
	if !strings.Contains(m.View(), "Incorrect passphrase") {
		t.Error("view should show the retry hint")
	}

	m = typePassphrase(m, "right")
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(PassphraseModal)
	if !m.Unlocked() || cmd == nil {
		t.Fatal("correct passphrase should unlock and quit")
	}
	if len(tried) != 2 {
		t.Errorf("expected 2 unlock attempts, got %d", len(tried))
	}
}

func TestPassphraseModalCancel(t *testing.T) {
	m := NewPassphraseModal("key", nil)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(PassphraseModal)
	if !m.IsCancelled() || m.Unlocked() {
		t.Error("esc should cancel without unlocking")
	}
}
