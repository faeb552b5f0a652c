package model

import (
	"time"

	"dealchat/api"
)

type Role string

const (
	RoleUser      Role = api.RoleUser
	RoleAssistant Role = api.RoleAssistant
	RoleSystem    Role = api.RoleSystem
	RoleTool      Role = api.RoleTool
)

// Message is one entry of the display history.
type Message struct {
	ID        string
	Role      Role
	Content   string // Empty when a tool call carried no text
	ToolCalls []api.ToolCallRecord

	// ProposalID references the armed ToolProposal while this message carries
	// a live confirmation affordance. Cleared the moment a decision is made.
	ProposalID string
	Status     string // Decision status line appended under Content

	Rendered  string // Cached rendered markdown
	Local     bool   // Synthesized client-side, never seen by the backend
	Timestamp time.Time
}

// HasAffordance reports whether the renderer should attach confirm/cancel
// controls to this message.
func (m Message) HasAffordance() bool {
	return m.ProposalID != ""
}

// Text returns Content followed by the status line, if any.
func (m Message) Text() string {
	switch {
	case m.Status == "":
		return m.Content
	case m.Content == "":
		return m.Status
	default:
		return m.Content + "\n\n" + m.Status
	}
}
