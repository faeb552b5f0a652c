package model

import (
	"context"

	"dealchat/api"
)

// Backend is the agent API the conversation manager talks to.
//
// It is defined in the model package (not backend) so the HTTP client and
// the test mocks can implement it without an import cycle.
type Backend interface {
	// Chat sends one user turn with the current history.
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)

	// Confirm sends the human decision for a proposed tool call.
	Confirm(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error)

	ListConversations(ctx context.Context) ([]api.ConversationSummary, error)
	GetConversation(ctx context.Context, id string) (*api.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

// ListingCache keeps the last known conversation listing so the history list
// can be shown when the backend is unreachable.
type ListingCache interface {
	Replace(conversations []api.ConversationSummary) error
	List() ([]api.ConversationSummary, error)
	Remove(id string) error
}
