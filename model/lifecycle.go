package model

import (
	"context"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"

	"dealchat/api"
	"dealchat/config"
)

// StartNew abandons the open conversation: any armed proposal is dropped
// without contacting the backend and in-flight responses become stale.
func (m *Model) StartNew() {
	if p, ok := m.conv.Gate.Proposal(); ok && config.DebugLog != nil {
		config.DebugLog.Printf("[Lifecycle] Abandoning proposal %s (toolUseId=%s)", p.ToolName, p.ToolUseID)
	}

	m.conv.Gate.Clear()
	m.conv.History.Reset(m.Config.Greeting)
	m.awaiting = false
	m.generation++
}

// LoadConversation fetches a persisted conversation. The result must be fed
// back through ApplyLoad.
func (m *Model) LoadConversation(id string) tea.Cmd {
	if m.Backend == nil || id == "" {
		return nil
	}

	generation := m.generation
	backend := m.Backend
	base, timeout := m.baseCtx, m.timeout

	return func() tea.Msg {
		conv, err := call(base, timeout, func(ctx context.Context) (*api.Conversation, error) {
			return backend.GetConversation(ctx, id)
		})
		return ConversationLoadedMsg{
			Generation:   generation,
			ID:           id,
			Conversation: conv,
			Err:          err,
		}
	}
}

// ApplyLoad replaces the open conversation with a loaded one. Failures and
// stale results leave the current state untouched and return false.
func (m *Model) ApplyLoad(msg ConversationLoadedMsg) bool {
	if msg.Generation != m.generation {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] Discarding stale load of %s", msg.ID)
		}
		return false
	}
	if msg.Err != nil || msg.Conversation == nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] Failed to load conversation %s: %v", msg.ID, msg.Err)
		}
		return false
	}

	id := msg.Conversation.ID
	if id == "" {
		id = msg.ID
	}

	display, history := splitLoadedMessages(msg.Conversation.Messages)
	if len(display) == 0 {
		display = []Message{{Role: RoleAssistant, Content: m.Config.EmptyPlaceholder, Local: true}}
	}

	if p, ok := m.conv.Gate.Proposal(); ok && config.DebugLog != nil {
		config.DebugLog.Printf("[Lifecycle] Abandoning proposal %s for load of %s", p.ToolName, id)
	}

	m.conv.Gate.Clear()
	m.conv.History.Replace(display, history, id)
	m.awaiting = false
	m.generation++

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Lifecycle] Loaded conversation %s (%d displayed, %d in history)", id, len(display), len(history))
	}
	return true
}

// splitLoadedMessages builds the two views of a persisted conversation.
// System entries are dropped from both. Tool entries and entries that cannot
// be decoded stay in the history untouched but are never displayed, and
// neither are assistant entries with no text and no tool calls.
func splitLoadedMessages(raw []json.RawMessage) ([]Message, []json.RawMessage) {
	var display []Message
	history := make([]json.RawMessage, 0, len(raw))

	for _, entry := range raw {
		stored, err := api.DecodeMessage(entry)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Lifecycle] Not displaying undecodable message: %v", err)
			}
			history = append(history, entry)
			continue
		}

		role := Role(stored.Role)
		if role == RoleSystem {
			continue
		}
		history = append(history, entry)

		if role == RoleTool {
			continue
		}

		text := api.ContentText(stored.Content)
		calls := api.DecodeToolCalls(stored.ToolCalls)
		if text == "" && len(calls) == 0 {
			continue
		}
		display = append(display, Message{Role: role, Content: text, ToolCalls: calls})
	}

	return display, history
}

// DeleteConversation removes a persisted conversation. The result must be fed
// back through ApplyDelete.
func (m *Model) DeleteConversation(id string) tea.Cmd {
	if m.Backend == nil || id == "" {
		return nil
	}

	backend := m.Backend
	base, timeout := m.baseCtx, m.timeout

	return func() tea.Msg {
		_, err := call(base, timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, backend.DeleteConversation(ctx, id)
		})
		return ConversationDeletedMsg{ID: id, Err: err}
	}
}

// ApplyDelete drops a deleted conversation from the listing and cache. When
// it is the one currently open, the manager starts a new chat.
func (m *Model) ApplyDelete(msg ConversationDeletedMsg) bool {
	if msg.Err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] Failed to delete conversation %s: %v", msg.ID, msg.Err)
		}
		return false
	}

	kept := m.listing[:0]
	for _, c := range m.listing {
		if c.ID != msg.ID {
			kept = append(kept, c)
		}
	}
	m.listing = kept

	if m.Cache != nil {
		if err := m.Cache.Remove(msg.ID); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] Failed to remove %s from cache: %v", msg.ID, err)
		}
	}

	if msg.ID == m.conv.History.ID() {
		m.StartNew()
	}
	return true
}

// FetchConversationList retrieves the conversation listing, falling back to
// the local cache when the backend cannot be reached.
func (m *Model) FetchConversationList() tea.Cmd {
	if m.Backend == nil {
		return nil
	}

	backend := m.Backend
	cache := m.Cache
	base, timeout := m.baseCtx, m.timeout

	return func() tea.Msg {
		list, err := call(base, timeout, func(ctx context.Context) ([]api.ConversationSummary, error) {
			return backend.ListConversations(ctx)
		})
		if err == nil {
			if cache != nil {
				if cerr := cache.Replace(list); cerr != nil && config.DebugLog != nil {
					config.DebugLog.Printf("[Lifecycle] Failed to refresh listing cache: %v", cerr)
				}
			}
			return ConversationsListMsg{Conversations: list}
		}

		if cache != nil {
			cached, cerr := cache.List()
			if cerr == nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[Lifecycle] Listing failed, serving %d cached conversations: %v", len(cached), err)
				}
				return ConversationsListMsg{Conversations: cached, Cached: true, Err: err}
			}
		}
		return ConversationsListMsg{Err: err}
	}
}

// ApplyList stores the fetched listing. A failure with nothing cached keeps
// the previous listing.
func (m *Model) ApplyList(msg ConversationsListMsg) bool {
	if msg.Err != nil && !msg.Cached {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] Failed to list conversations: %v", msg.Err)
		}
		return false
	}
	m.listing = append([]api.ConversationSummary(nil), msg.Conversations...)
	return true
}
