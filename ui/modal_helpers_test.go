package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dealchat/api"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "short line", 20, "short line"},
		{"wraps", "one two three", 7, "one two\nthree"},
		{"keeps newlines", "a\n\nb", 10, "a\n\nb"},
		{"zero width", "unchanged text", 0, "unchanged text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordWrap(tt.text, tt.width); got != tt.want {
				t.Errorf("wordWrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestErrorModalQuits(t *testing.T) {
	m := NewErrorModal("Configuration Error", "unknown security_method: \"vault\"")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(ErrorModal)

	if view := m.View(); !strings.Contains(view, "Configuration Error") || !strings.Contains(view, "vault") {
		t.Errorf("view should show the title and message:\n%s", view)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("unrelated keys should not quit")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Error("enter should quit")
	}
}

func TestRenderDeleteConfirmation(t *testing.T) {
	view := stripANSI(renderDeleteConfirmation(api.ConversationSummary{ID: "conv-1", Title: "Acme renewal"}, 100, 30))
	for _, want := range []string{"Delete Conversation", "Acme renewal", "cannot be undone", "y Delete", "n Keep"} {
		if !strings.Contains(view, want) {
			t.Errorf("missing %q in:\n%s", want, view)
		}
	}
}
