package model

import "dealchat/api"

// TurnCompletedMsg carries the result of a /chat round trip.
type TurnCompletedMsg struct {
	Generation uint64
	Text       string
	Response   *api.ChatResponse
	Err        error
}

// DecisionCompletedMsg carries the result of a /confirm round trip.
type DecisionCompletedMsg struct {
	Generation uint64
	ProposalID string
	ToolName   string
	Decision   Decision
	Response   *api.ConfirmResponse
	Err        error
}

type ConversationLoadedMsg struct {
	Generation   uint64
	ID           string
	Conversation *api.Conversation
	Err          error
}

type ConversationDeletedMsg struct {
	ID  string
	Err error
}

type ConversationsListMsg struct {
	Conversations []api.ConversationSummary
	Cached        bool // Served from the local cache after a backend failure
	Err           error
}

type ConversationExportedMsg struct {
	ID   string
	Path string
	Err  error
}
