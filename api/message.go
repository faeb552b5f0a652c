package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// StoredMessage is the decoded view of one history entry. Content may be a
// string, null, or a list of content blocks.
type StoredMessage struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	ToolCalls json.RawMessage `json:"toolCalls,omitempty"`
}

// ToolCallRecord is the part of a recorded tool call the client displays.
type ToolCallRecord struct {
	ID   string
	Name string
}

func DecodeMessage(raw json.RawMessage) (StoredMessage, error) {
	var msg StoredMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return StoredMessage{}, fmt.Errorf("decoding history entry: %w", err)
	}
	return msg, nil
}

// NewTextEntry builds a {role, content} history entry.
func NewTextEntry(role, content string) json.RawMessage {
	data, _ := json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{role, content})
	return data
}

// ContentText extracts the human-readable text from a content field.
// Block lists contribute their "text" blocks only.
func ContentText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return text
	}

	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}

	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// DecodeToolCalls reads both flat ({id, name}) and OpenAI-style
// ({id, function: {name}}) tool call records. Unknown shapes yield nil.
func DecodeToolCalls(raw json.RawMessage) []ToolCallRecord {
	if len(raw) == 0 {
		return nil
	}

	var calls []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Function *struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &calls); err != nil {
		return nil
	}

	records := make([]ToolCallRecord, 0, len(calls))
	for _, c := range calls {
		name := c.Name
		if name == "" && c.Function != nil {
			name = c.Function.Name
		}
		records = append(records, ToolCallRecord{ID: c.ID, Name: name})
	}
	return records
}
