package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"dealchat/api"
	"dealchat/config"
	"dealchat/storage"
)

// ExportConversation fetches a persisted conversation and writes it to path
// as indented JSON. The open conversation is not touched.
func (m *Model) ExportConversation(id, path string) tea.Cmd {
	if m.Backend == nil || id == "" {
		return nil
	}

	backend := m.Backend
	base, timeout := m.baseCtx, m.timeout

	return func() tea.Msg {
		conv, err := call(base, timeout, func(ctx context.Context) (*api.Conversation, error) {
			return backend.GetConversation(ctx, id)
		})
		if err == nil {
			err = storage.ExportConversation(conv, path)
		}
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] Export of %s failed: %v", id, err)
		}
		return ConversationExportedMsg{ID: id, Path: path, Err: err}
	}
}
