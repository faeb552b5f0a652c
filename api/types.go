// Package api holds the JSON shapes exchanged with the agent backend.
//
// History entries and tool payloads are kept as json.RawMessage: the client
// never interprets them and must send them back byte-for-byte.
package api

import (
	"encoding/json"
	"time"
)

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message             string            `json:"message"`
	ConversationHistory []json.RawMessage `json:"conversationHistory"`
	ConversationID      *string           `json:"conversationId"`
}

// ChatResponse is the body returned by POST /chat.
// UpdatedHistory is nil when the backend omitted it.
type ChatResponse struct {
	Reply                string            `json:"reply"`
	UpdatedHistory       []json.RawMessage `json:"updatedHistory,omitempty"`
	ConversationID       string            `json:"conversationId,omitempty"`
	RequiresConfirmation bool              `json:"requiresConfirmation,omitempty"`
	ToolName             string            `json:"toolName,omitempty"`
	ToolArgs             json.RawMessage   `json:"toolArgs,omitempty"`
	ToolUseID            string            `json:"toolUseId,omitempty"`
	AssistantMessage     json.RawMessage   `json:"assistantMessage,omitempty"`
	ConfirmationPreview  map[string]any    `json:"confirmationPreview,omitempty"`
}

// ConfirmRequest is the body of POST /confirm
type ConfirmRequest struct {
	ToolName            string            `json:"toolName"`
	ToolArgs            json.RawMessage   `json:"toolArgs"`
	ToolUseID           string            `json:"toolUseId"`
	AssistantMessage    json.RawMessage   `json:"assistantMessage"`
	Confirmed           bool              `json:"confirmed"`
	ConversationHistory []json.RawMessage `json:"conversationHistory"`
	UserMessage         string            `json:"userMessage"`
	ConversationID      *string           `json:"conversationId"`
}

// ConfirmResponse is the body returned by POST /confirm
type ConfirmResponse struct {
	Reply          string            `json:"reply"`
	UpdatedHistory []json.RawMessage `json:"updatedHistory,omitempty"`
	ConversationID string            `json:"conversationId,omitempty"`
}

// ConversationSummary is one row of GET /conversations
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
}

// Conversation is the body of GET /conversations/{id}
type Conversation struct {
	ID       string            `json:"id"`
	Messages []json.RawMessage `json:"messages"`
}

// ErrorResponse is the error body the backend sends with 4xx/5xx statuses
type ErrorResponse struct {
	Error string `json:"error"`
}

// OptionalID maps the client's "no id yet" (empty string) to JSON null.
func OptionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
