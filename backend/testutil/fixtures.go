package testutil

import (
	"encoding/json"

	"dealchat/api"
)

// History returns a two-entry history as the backend would send it
func History(user, assistant string) []json.RawMessage {
	return []json.RawMessage{
		api.NewTextEntry(api.RoleUser, user),
		api.NewTextEntry(api.RoleAssistant, assistant),
	}
}

// PlainReply returns a /chat response without a tool proposal
func PlainReply(reply, conversationID string) *api.ChatResponse {
	return &api.ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
	}
}

// UpdateFieldProposal returns a /chat response proposing update_client_field
// for Acme with toolUseId "abc123".
func UpdateFieldProposal(conversationID string) *api.ChatResponse {
	return &api.ChatResponse{
		Reply:                "I'll mark **Acme** as Closed Won. Confirm?",
		ConversationID:       conversationID,
		RequiresConfirmation: true,
		ToolName:             "update_client_field",
		ToolArgs:             json.RawMessage(`{"clientId":42,"field":"stage","value":"closed_won"}`),
		ToolUseID:            "abc123",
		AssistantMessage: json.RawMessage(`{"role":"assistant","content":[` +
			`{"type":"tool_use","id":"abc123","name":"update_client_field","input":{"clientId":42,"field":"stage","value":"closed_won"}}]}`),
		ConfirmationPreview: map[string]any{
			"client": "Acme",
			"field":  "stage",
			"value":  "Closed Won",
		},
		UpdatedHistory: []json.RawMessage{
			json.RawMessage(`{"role":"user","content":"mark Acme as closed won"}`),
		},
	}
}

// StoredConversation returns a persisted conversation mixing every role
func StoredConversation(id string) *api.Conversation {
	return &api.Conversation{
		ID: id,
		Messages: []json.RawMessage{
			json.RawMessage(`{"role":"system","content":"You are a sales assistant."}`),
			json.RawMessage(`{"role":"user","content":"list my clients"}`),
			json.RawMessage(`{"role":"assistant","content":null,"toolCalls":[{"id":"t1","name":"list_clients"}]}`),
			json.RawMessage(`{"role":"tool","content":"[{\"name\":\"Acme\"}]"}`),
			json.RawMessage(`{"role":"assistant","content":"You have one client: Acme."}`),
		},
	}
}
