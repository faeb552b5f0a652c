package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealchat/api"
	"dealchat/backend/testutil"
)

// startServer serves mux under /api, the way the agent backend is usually mounted.
func startServer(t *testing.T, mux *http.ServeMux, opts ...ClientOption) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]json.RawMessage {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"localhost:8080", "ftp://example.com", "://bad"} {
		_, err := NewClient(raw)
		assert.Error(t, err, raw)
	}
}

func TestChatFirstTurnSendsNullID(t *testing.T) {
	var body map[string]json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body = decodeBody(t, r)
		writeJSON(w, http.StatusOK, `{"reply":"Hello","conversationId":"conv-1"}`)
	})
	client := startServer(t, mux)

	resp, err := client.Chat(context.Background(), api.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "Hello", resp.Reply)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.JSONEq(t, `"hi"`, string(body["message"]))
	assert.JSONEq(t, `[]`, string(body["conversationHistory"]), "history must never be null")
	assert.JSONEq(t, `null`, string(body["conversationId"]))
}

func TestChatDecodesProposal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"reply": "Mark Acme as Closed Won?",
			"conversationId": "conv-7",
			"requiresConfirmation": true,
			"toolName": "update_client_field",
			"toolArgs": {"clientId":42,"value":"closed_won"},
			"toolUseId": "abc123",
			"assistantMessage": {"role":"assistant","content":[]},
			"confirmationPreview": {"client":"Acme"},
			"updatedHistory": [{"role":"user","content":"mark Acme"}]
		}`)
	})
	client := startServer(t, mux)

	resp, err := client.Chat(context.Background(), api.ChatRequest{Message: "mark Acme", ConversationHistory: testutil.History("a", "b")})
	require.NoError(t, err)

	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, "update_client_field", resp.ToolName)
	assert.Equal(t, "abc123", resp.ToolUseID)
	assert.JSONEq(t, `{"clientId":42,"value":"closed_won"}`, string(resp.ToolArgs))
	assert.Equal(t, "Acme", resp.ConfirmationPreview["client"])
	assert.Len(t, resp.UpdatedHistory, 1)
}

func TestConfirmEchoesProposal(t *testing.T) {
	var body map[string]json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/confirm", func(w http.ResponseWriter, r *http.Request) {
		body = decodeBody(t, r)
		writeJSON(w, http.StatusOK, `{"reply":"Done.","conversationId":"conv-7"}`)
	})
	client := startServer(t, mux)

	id := "conv-7"
	assistant := json.RawMessage(`{"role":"assistant","content":[{"type":"tool_use","id":"abc123"}]}`)
	resp, err := client.Confirm(context.Background(), api.ConfirmRequest{
		ToolName:         "update_client_field",
		ToolArgs:         json.RawMessage(`{"clientId":42}`),
		ToolUseID:        "abc123",
		AssistantMessage: assistant,
		Confirmed:        true,
		UserMessage:      "mark Acme",
		ConversationID:   &id,
	})
	require.NoError(t, err)

	assert.Equal(t, "Done.", resp.Reply)
	assert.JSONEq(t, `true`, string(body["confirmed"]))
	assert.JSONEq(t, `"abc123"`, string(body["toolUseId"]))
	assert.JSONEq(t, `{"clientId":42}`, string(body["toolArgs"]))
	assert.JSONEq(t, string(assistant), string(body["assistantMessage"]))
	assert.JSONEq(t, `[]`, string(body["conversationHistory"]))
	assert.JSONEq(t, `"conv-7"`, string(body["conversationId"]))
}

func TestHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "dealchat/v1.2.3 "), r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, http.StatusOK, `[]`)
	})
	client := startServer(t, mux, WithToken("secret"), WithUserAgent(UserAgent("v1.2.3")))

	_, err := client.ListConversations(context.Background())
	require.NoError(t, err)
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `[]`)
	})
	client := startServer(t, mux)

	_, err := client.ListConversations(context.Background())
	require.NoError(t, err)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json error body", http.StatusBadRequest, `{"error":"message is required"}`, "message is required"},
		{"plain body", http.StatusBadGateway, `upstream down`, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			client := startServer(t, mux)

			_, err := client.Chat(context.Background(), api.ChatRequest{Message: "hi"})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "expected an APIError, got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestListConversationsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"a","title":"Acme"},{"id":"b"}]`, 2},
		{"envelope", `{"conversations":[{"id":"a","title":"Acme","messageCount":3}]}`, 1},
		{"empty body", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/conversations", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			client := startServer(t, mux)

			list, err := client.ListConversations(context.Background())
			require.NoError(t, err)
			assert.Len(t, list, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "a", list[0].ID)
				assert.Equal(t, "Acme", list[0].Title)
			}
		})
	}
}

func TestGetConversationFillsID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "conv-9", r.PathValue("id"))
		writeJSON(w, http.StatusOK, `{"messages":[{"role":"user","content":"hi"}]}`)
	})
	client := startServer(t, mux)

	conv, err := client.GetConversation(context.Background(), "conv-9")
	require.NoError(t, err)
	assert.Equal(t, "conv-9", conv.ID)
	assert.Len(t, conv.Messages, 1)
}

func TestDeleteConversation(t *testing.T) {
	deleted := ""
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, `{"error":"conversation not found"}`)
			return
		}
		deleted = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})
	client := startServer(t, mux)

	require.NoError(t, client.DeleteConversation(context.Background(), "conv-9"))
	assert.Equal(t, "conv-9", deleted)

	err := client.DeleteConversation(context.Background(), "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	client := startServer(t, mux)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, api.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConversationIDStaysOneSegment(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.RequestURI)
		writeJSON(w, http.StatusOK, `{"messages":[]}`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)

	_, err = client.GetConversation(context.Background(), "../chat")
	require.NoError(t, err)
	require.NoError(t, client.DeleteConversation(context.Background(), "a/b"))

	assert.Equal(t, []string{
		"GET /api/conversations/..%2Fchat",
		"DELETE /api/conversations/a%2Fb",
	}, seen)
}

func TestInvalidConversationIDNeverSent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)

	for _, id := range []string{"", "  ", ".", ".."} {
		assert.Error(t, client.DeleteConversation(context.Background(), id), "id %q", id)
		_, err := client.GetConversation(context.Background(), id)
		assert.Error(t, err, "id %q", id)
	}
	assert.Zero(t, calls)
}
