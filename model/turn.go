package model

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"dealchat/api"
	"dealchat/config"
)

// SendUserTurn appends the user message optimistically and returns the
// command that performs the /chat round trip. The result must be fed back
// through ApplyTurn.
//
// It is rejected without touching any state while a proposal is armed or
// another round trip is awaiting.
func (m *Model) SendUserTurn(text string) (tea.Cmd, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if m.conv.Gate.State() == GateArmed {
		return nil, ErrProposalPending
	}
	if m.Awaiting() {
		return nil, ErrTurnInFlight
	}

	req := api.ChatRequest{
		Message:             text,
		ConversationHistory: m.conv.History.History(),
		ConversationID:      api.OptionalID(m.conv.History.ID()),
	}

	m.conv.History.Append(Message{Role: RoleUser, Content: text})
	m.awaiting = true

	generation := m.generation
	backend := m.Backend
	base, timeout := m.baseCtx, m.timeout

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Turn] Sending turn (gen=%d, conversation=%q, history=%d)",
			generation, m.conv.History.ID(), len(req.ConversationHistory))
	}

	return func() tea.Msg {
		resp, err := call(base, timeout, func(ctx context.Context) (*api.ChatResponse, error) {
			return backend.Chat(ctx, req)
		})
		return TurnCompletedMsg{
			Generation: generation,
			Text:       text,
			Response:   resp,
			Err:        err,
		}
	}, nil
}

// ApplyTurn applies a completed /chat round trip. It returns false when the
// result belongs to an abandoned conversation and was discarded.
func (m *Model) ApplyTurn(msg TurnCompletedMsg) bool {
	if msg.Generation != m.generation {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Turn] Discarding stale chat response (gen=%d, current=%d)", msg.Generation, m.generation)
		}
		return false
	}
	m.awaiting = false

	err := msg.Err
	if err == nil && msg.Response == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Turn] Chat failed: %v", err)
		}
		m.appendLocalError(err)
		return true
	}

	resp := msg.Response
	if resp.RequiresConfirmation {
		m.armProposal(resp, msg.Text)
		m.conv.History.AdoptID(resp.ConversationID)
		return true
	}

	if resp.UpdatedHistory != nil {
		m.conv.History.ReplaceHistory(resp.UpdatedHistory)
	} else {
		m.conv.History.AppendHistory(
			api.NewTextEntry(api.RoleUser, msg.Text),
			api.NewTextEntry(api.RoleAssistant, resp.Reply),
		)
	}
	m.conv.History.Append(Message{Role: RoleAssistant, Content: resp.Reply})
	m.conv.History.AdoptID(resp.ConversationID)
	return true
}

func (m *Model) armProposal(resp *api.ChatResponse, userText string) {
	proposal := newToolProposal(resp, userText, m.conv.History.ID())
	text := proposalText(resp)

	if err := m.conv.Gate.Arm(proposal); err != nil {
		// Unreachable while input is disabled; show the text without controls
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Gate] Ignoring proposal for %s: %v", resp.ToolName, err)
		}
		m.conv.History.Append(Message{Role: RoleAssistant, Content: text})
		return
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Gate] Armed %s (toolUseId=%s, proposal=%s)", proposal.ToolName, proposal.ToolUseID, proposal.ID)
	}
	m.conv.History.Append(Message{
		Role:       RoleAssistant,
		Content:    text,
		ProposalID: proposal.ID,
	})
}

// ResolvePendingAction records the decision on the proposal's message and
// returns the command that performs the /confirm round trip. The result must
// be fed back through ApplyDecision.
func (m *Model) ResolvePendingAction(d Decision) (tea.Cmd, error) {
	proposal, err := m.conv.Gate.beginResolve()
	if err != nil {
		return nil, err
	}

	m.conv.History.patch(
		func(msg Message) bool { return msg.ProposalID == proposal.ID },
		func(msg Message) Message { return applyDecisionPatch(msg, d) },
	)

	req := proposal.confirmRequest(d)
	generation := m.generation
	backend := m.Backend
	base, timeout := m.baseCtx, m.timeout

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Gate] Resolving %s with %s (toolUseId=%s)", proposal.ToolName, d, proposal.ToolUseID)
	}

	return func() tea.Msg {
		resp, err := call(base, timeout, func(ctx context.Context) (*api.ConfirmResponse, error) {
			return backend.Confirm(ctx, req)
		})
		return DecisionCompletedMsg{
			Generation: generation,
			ProposalID: proposal.ID,
			ToolName:   proposal.ToolName,
			Decision:   d,
			Response:   resp,
			Err:        err,
		}
	}, nil
}

// ApplyDecision applies a completed /confirm round trip. The gate is always
// Empty afterwards, unless the result was discarded as stale.
func (m *Model) ApplyDecision(msg DecisionCompletedMsg) bool {
	current, armed := m.conv.Gate.Proposal()
	if msg.Generation != m.generation || !armed || current.ID != msg.ProposalID {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Gate] Discarding stale confirm response for %s (gen=%d, current=%d)",
				msg.ToolName, msg.Generation, m.generation)
		}
		return false
	}
	defer m.conv.Gate.Resolve()

	err := msg.Err
	if err == nil && msg.Response == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Gate] %s of %s failed: %v", msg.Decision, msg.ToolName, err)
		}
		if msg.Decision == DecisionCancel {
			m.conv.History.Append(Message{Role: RoleAssistant, Content: replyCancelled, Local: true})
		} else {
			m.appendLocalError(err)
		}
		return true
	}

	resp := msg.Response
	m.conv.History.SetID(resp.ConversationID)

	reply := resp.Reply
	if reply == "" {
		reply = replyCancelled
		if msg.Decision == DecisionConfirm {
			reply = replyDone
		}
	}

	if msg.Decision == DecisionConfirm && resp.UpdatedHistory != nil {
		m.conv.History.ReplaceHistory(resp.UpdatedHistory)
	} else {
		// Keep the exchange as context for the next turn
		m.conv.History.AppendHistory(
			api.NewTextEntry(api.RoleUser, current.OriginatingUserMessage),
			api.NewTextEntry(api.RoleAssistant, reply),
		)
	}

	m.conv.History.Append(Message{Role: RoleAssistant, Content: reply})
	return true
}

func (m *Model) appendLocalError(err error) {
	m.conv.History.Append(Message{
		Role:    RoleAssistant,
		Content: fmt.Sprintf("Sorry, something went wrong: %v", err),
		Local:   true,
	})
}
