package api

import (
	"encoding/json"
	"testing"
)

func TestContentText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", ``, ""},
		{"null", `null`, ""},
		{"plain string", `"hello"`, "hello"},
		{"text blocks", `[{"type":"text","text":"a"},{"type":"tool_use","id":"x"},{"type":"text","text":"b"}]`, "a\n\nb"},
		{"only tool blocks", `[{"type":"tool_result","content":"ok"}]`, ""},
		{"number", `42`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentText(json.RawMessage(tt.content)); got != tt.want {
				t.Errorf("ContentText(%s) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestDecodeToolCalls(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []ToolCallRecord
	}{
		{"absent", ``, nil},
		{"flat", `[{"id":"abc","name":"update_client_field"}]`, []ToolCallRecord{{ID: "abc", Name: "update_client_field"}}},
		{"openai style", `[{"id":"c1","function":{"name":"list_clients"}}]`, []ToolCallRecord{{ID: "c1", Name: "list_clients"}}},
		{"not a list", `{"id":"x"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeToolCalls(json.RawMessage(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewTextEntry(t *testing.T) {
	entry := NewTextEntry(RoleUser, `say "hi"`)

	msg, err := DecodeMessage(entry)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %q", msg.Role)
	}
	if got := ContentText(msg.Content); got != `say "hi"` {
		t.Errorf("content = %q", got)
	}
}

func TestChatRequestNullConversationID(t *testing.T) {
	data, err := json.Marshal(ChatRequest{Message: "hi", ConversationHistory: []json.RawMessage{}, ConversationID: OptionalID("")})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"message":"hi","conversationHistory":[],"conversationId":null}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
