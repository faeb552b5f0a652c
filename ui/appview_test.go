package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dealchat/api"
	"dealchat/backend/testutil"
	"dealchat/config"
	appmodel "dealchat/model"
)

func newTestView(t *testing.T) (AppView, *testutil.MockBackend) {
	t.Helper()
	mock := testutil.NewMockBackend()
	view := NewAppView(appmodel.NewModel(config.Default(), mock, nil), "test", "MIT")
	updated, _ := view.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(AppView), mock
}

func press(t *testing.T, v AppView, key tea.KeyMsg) (AppView, tea.Cmd) {
	t.Helper()
	updated, cmd := v.Update(key)
	return updated.(AppView), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds every resulting model message back into the view.
// Batches are expanded; timer-driven commands must not reach here.
func drain(t *testing.T, v AppView, cmd tea.Cmd) AppView {
	t.Helper()
	if cmd == nil {
		return v
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			v = drain(t, v, c)
		}
	case turnCompletedMsg, decisionCompletedMsg, conversationLoadedMsg, conversationDeletedMsg, conversationsListMsg:
		updated, _ := v.Update(msg)
		v = updated.(AppView)
	}
	return v
}

func sendText(t *testing.T, v AppView, text string) AppView {
	t.Helper()
	v.textarea.SetValue(text)
	v, cmd := press(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a command after sending %q", text)
	}
	return drain(t, v, cmd)
}

func TestAppViewSendsTurn(t *testing.T) {
	v, mock := newTestView(t)

	v = sendText(t, v, "which deals are at risk?")

	if len(mock.ChatCalls) != 1 || mock.ChatCalls[0].Message != "which deals are at risk?" {
		t.Fatalf("unexpected chat calls %+v", mock.ChatCalls)
	}
	if v.textarea.Value() != "" {
		t.Error("textarea should be cleared after sending")
	}
	if !v.textarea.Focused() {
		t.Error("input should be enabled once the reply arrived")
	}
	if !strings.Contains(v.viewport.View(), "Mock reply") {
		t.Error("expected the reply in the viewport")
	}
}

func TestAppViewProposalCard(t *testing.T) {
	v, mock := newTestView(t)
	mock.ChatFunc = func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		return testutil.UpdateFieldProposal("conv-7"), nil
	}

	v = sendText(t, v, "mark Acme as closed won")

	if v.textarea.Focused() {
		t.Error("input must be disabled while a proposal is armed")
	}
	if !strings.Contains(v.viewport.View(), "Confirmation required") {
		t.Error("expected the confirmation card under the proposal")
	}
	status := v.renderStatusBar()
	for _, want := range []string{"Confirm", "Cancel"} {
		if !strings.Contains(status, want) {
			t.Errorf("status bar %q missing %q", status, want)
		}
	}

	// Typing is swallowed while armed
	v, _ = press(t, v, runes("x"))
	if v.textarea.Value() != "" {
		t.Errorf("textarea accepted input while armed: %q", v.textarea.Value())
	}

	v, cmd := press(t, v, runes("y"))
	v = drain(t, v, cmd)

	if len(mock.ConfirmCalls) != 1 || !mock.ConfirmCalls[0].Confirmed {
		t.Fatalf("expected one confirm call, got %+v", mock.ConfirmCalls)
	}
	if _, armed := v.dataModel.PendingProposal(); armed {
		t.Error("gate should be empty after the decision")
	}
	if !v.textarea.Focused() {
		t.Error("input should be re-enabled after the decision")
	}

	// A second y is a plain keystroke now
	v, _ = press(t, v, runes("y"))
	if len(mock.ConfirmCalls) != 1 {
		t.Error("a decision must be sent at most once")
	}
	if v.textarea.Value() != "y" {
		t.Errorf("expected y to be typed, got %q", v.textarea.Value())
	}
}

func TestAppViewNewChatAbandonsProposal(t *testing.T) {
	v, mock := newTestView(t)
	mock.ChatFunc = func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		return testutil.UpdateFieldProposal("conv-7"), nil
	}
	v = sendText(t, v, "mark Acme as closed won")

	v, _ = press(t, v, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n"), Alt: true})

	if _, armed := v.dataModel.PendingProposal(); armed {
		t.Error("Alt+N must abandon the proposal")
	}
	if len(mock.ConfirmCalls) != 0 {
		t.Error("abandoning must not reach /confirm")
	}
	if strings.Contains(v.viewport.View(), "Confirmation required") {
		t.Error("the confirmation card must be gone")
	}
}

func TestAppViewConversationListLoad(t *testing.T) {
	v, mock := newTestView(t)
	mock.Conversations["conv-9"] = testutil.StoredConversation("conv-9")

	v, cmd := press(t, v, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true})
	if !v.showConversationList {
		t.Fatal("Alt+S should open the conversation list")
	}
	v = drain(t, v, cmd)

	if got := len(v.conversationList.visible()); got != 1 {
		t.Fatalf("expected 1 listed conversation, got %d", got)
	}

	v, cmd = press(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	v = drain(t, v, cmd)

	if v.showConversationList {
		t.Error("list should close after loading")
	}
	if v.dataModel.ConversationID() != "conv-9" {
		t.Errorf("expected conv-9 to be open, got %q", v.dataModel.ConversationID())
	}
}

func TestAppViewDeleteNeedsConfirmation(t *testing.T) {
	v, mock := newTestView(t)
	mock.Conversations["conv-9"] = testutil.StoredConversation("conv-9")

	v, cmd := press(t, v, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true})
	v = drain(t, v, cmd)

	v, _ = press(t, v, runes("d"))
	if v.confirmDelete == nil {
		t.Fatal("d should ask for confirmation")
	}
	v, _ = press(t, v, runes("n"))
	if v.confirmDelete != nil || len(mock.DeleteCalls) != 0 {
		t.Fatal("n must keep the conversation")
	}

	v, _ = press(t, v, runes("d"))
	v, cmd = press(t, v, runes("y"))
	drain(t, v, cmd)
	if len(mock.DeleteCalls) != 1 || mock.DeleteCalls[0] != "conv-9" {
		t.Errorf("expected conv-9 to be deleted, got %v", mock.DeleteCalls)
	}
}
