package model

import (
	"context"
	"encoding/json"
	"time"

	"dealchat/api"
	"dealchat/config"
)

const defaultRequestTimeout = 60 * time.Second

// Conversation is the single open chat: its history and its pending action
// gate. Only Model mutates it.
type Conversation struct {
	History HistoryStore
	Gate    Gate
}

// Model owns the open Conversation for the lifetime of a UI session. All
// methods must be called from one goroutine (the bubbletea Update loop);
// backend calls run inside the returned tea.Cmds on values captured when the
// command was created.
type Model struct {
	Config  *config.Config
	Backend Backend
	Cache   ListingCache // optional

	conv     Conversation
	listing  []api.ConversationSummary
	awaiting bool

	// generation is bumped by every lifecycle transition; responses issued
	// under an older generation are discarded.
	generation uint64

	baseCtx context.Context
	timeout time.Duration
}

func NewModel(cfg *config.Config, backend Backend, cache ListingCache) *Model {
	if cfg == nil {
		cfg = config.Default()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	m := &Model{
		Config:  cfg,
		Backend: backend,
		Cache:   cache,
		baseCtx: context.Background(),
		timeout: timeout,
	}
	m.conv.History.Reset(cfg.Greeting)
	return m
}

// WithContext sets the parent context of every backend call.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.baseCtx = ctx
	return m
}

func (m *Model) Messages() []Message {
	return m.conv.History.Messages()
}

// History returns the API-facing history replayed on the next turn.
func (m *Model) History() []json.RawMessage {
	return m.conv.History.History()
}

func (m *Model) ConversationID() string {
	return m.conv.History.ID()
}

func (m *Model) GateState() GateState {
	return m.conv.Gate.State()
}

func (m *Model) PendingProposal() (ToolProposal, bool) {
	return m.conv.Gate.Proposal()
}

// Awaiting reports whether a chat or confirm round trip is in flight.
func (m *Model) Awaiting() bool {
	return m.awaiting || m.conv.Gate.Resolving()
}

// CanSend reports whether the input box may accept a new user turn.
func (m *Model) CanSend() bool {
	return !m.Awaiting() && m.conv.Gate.State() == GateEmpty
}

func (m *Model) Generation() uint64 {
	return m.generation
}

func (m *Model) Listing() []api.ConversationSummary {
	out := make([]api.ConversationSummary, len(m.listing))
	copy(out, m.listing)
	return out
}

func (m *Model) SetRendered(messageID, rendered string) bool {
	return m.conv.History.SetRendered(messageID, rendered)
}

// call runs fn with a per-request timeout derived from the base context.
func call[T any](base context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(base, timeout)
	defer cancel()
	return fn(ctx)
}
