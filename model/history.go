package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HistoryStore keeps the two views of one conversation: the display list the
// UI renders and the API-facing history replayed verbatim to the backend.
type HistoryStore struct {
	id      string
	display []Message
	history []json.RawMessage
}

func (h *HistoryStore) ID() string {
	return h.id
}

// AdoptID sets the conversation id only when none is known yet.
func (h *HistoryStore) AdoptID(id string) bool {
	if id == "" || h.id != "" {
		return false
	}
	h.id = id
	return true
}

func (h *HistoryStore) SetID(id string) {
	if id != "" {
		h.id = id
	}
}

// Append adds one display message, filling in ID and Timestamp when unset.
func (h *HistoryStore) Append(msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	h.display = append(h.display, msg)
	return msg
}

func (h *HistoryStore) AppendHistory(entries ...json.RawMessage) {
	h.history = append(h.history, entries...)
}

// ReplaceHistory overwrites the API-facing history with what the backend
// returned. No merge: the backend decides what context it accepts.
func (h *HistoryStore) ReplaceHistory(history []json.RawMessage) {
	h.history = append([]json.RawMessage(nil), history...)
}

// Replace overwrites all local state, used when loading a persisted
// conversation.
func (h *HistoryStore) Replace(display []Message, history []json.RawMessage, id string) {
	h.display = nil
	for _, msg := range display {
		h.Append(msg)
	}
	h.ReplaceHistory(history)
	h.id = id
}

// Reset returns to the state of a brand new chat: a single greeting.
func (h *HistoryStore) Reset(greeting string) {
	h.id = ""
	h.history = nil
	h.display = nil
	h.Append(Message{Role: RoleAssistant, Content: greeting, Local: true})
}

// Messages returns a copy of the display list.
func (h *HistoryStore) Messages() []Message {
	out := make([]Message, len(h.display))
	copy(out, h.display)
	return out
}

// History returns a copy of the API-facing history, never nil.
func (h *HistoryStore) History() []json.RawMessage {
	out := make([]json.RawMessage, len(h.history))
	copy(out, h.history)
	return out
}

func (h *HistoryStore) Len() int {
	return len(h.display)
}

// patch replaces the first display message matching pred with fn(msg).
func (h *HistoryStore) patch(pred func(Message) bool, fn func(Message) Message) bool {
	for i := range h.display {
		if pred(h.display[i]) {
			h.display[i] = fn(h.display[i])
			return true
		}
	}
	return false
}

// SetRendered caches rendered markdown for a message.
func (h *HistoryStore) SetRendered(messageID, rendered string) bool {
	return h.patch(
		func(m Message) bool { return m.ID == messageID },
		func(m Message) Message {
			m.Rendered = rendered
			return m
		},
	)
}
