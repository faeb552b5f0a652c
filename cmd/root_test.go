package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealchat/config"
)

// setupEnv points config at a scratch home and the backend at srv.
func setupEnv(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	home := t.TempDir()
	dataDir := filepath.Join(home, "data")
	t.Setenv("HOME", home)
	t.Setenv("DEALCHAT_DATA_DIR", dataDir)
	t.Setenv("DEALCHAT_DEBUG", "")
	t.Setenv("DEALCHAT_API_TOKEN", "")
	if srv != nil {
		t.Setenv("DEALCHAT_BACKEND_URL", srv.URL+"/api")
	}
	return dataDir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func fakeBackend(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var deleted []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"conv-1","title":"Acme pipeline","messageCount":4},{"id":"conv-2","title":"Globex"}]`)
	})
	mux.HandleFunc("GET /api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"messages":[{"role":"user","content":"how is Acme doing?"},{"role":"assistant","content":"Acme is in negotiation."}]}`)
	})
	mux.HandleFunc("DELETE /api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &deleted
}

func TestConversationsList(t *testing.T) {
	srv, _ := fakeBackend(t)
	setupEnv(t, srv)

	out, err := execute(t, "", "conversations", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "conv-1")
	assert.Contains(t, out, "Acme pipeline")
	assert.Contains(t, out, "Globex")
}

func TestConversationsShow(t *testing.T) {
	srv, _ := fakeBackend(t)
	setupEnv(t, srv)

	out, err := execute(t, "", "conversations", "show", "conv-1")
	require.NoError(t, err)

	assert.Contains(t, out, "[user]\nhow is Acme doing?")
	assert.Contains(t, out, "[assistant]\nAcme is in negotiation.")
}

func TestConversationsDelete(t *testing.T) {
	srv, deleted := fakeBackend(t)
	setupEnv(t, srv)

	out, err := execute(t, "", "conversations", "delete", "conv-2")
	require.NoError(t, err)

	assert.Contains(t, out, "Deleted conv-2")
	assert.Equal(t, []string{"conv-2"}, *deleted)
}

func TestConversationsRejectBlankID(t *testing.T) {
	srv, deleted := fakeBackend(t)
	setupEnv(t, srv)

	for _, sub := range []string{"show", "delete", "export"} {
		for _, id := range []string{"", "   "} {
			out, err := execute(t, "", "conversations", sub, id)
			assert.Error(t, err, "%s %q", sub, id)
			assert.NotContains(t, out, "Deleted")
		}
	}
	assert.Empty(t, *deleted)
}

func TestConversationsExport(t *testing.T) {
	srv, _ := fakeBackend(t)
	setupEnv(t, srv)
	path := filepath.Join(t.TempDir(), "acme.json")

	out, err := execute(t, "", "conversations", "export", "conv-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var exported map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Contains(t, string(exported["messages"]), "Acme is in negotiation.")
}

func TestTokenSetFromStdin(t *testing.T) {
	dataDir := setupEnv(t, nil)

	_, err := execute(t, "  secret-token\n", "token", "set")
	require.NoError(t, err)

	store := config.NewCredentialStore(config.SecurityPlainText, "")
	require.NoError(t, store.Load(dataDir))
	assert.Equal(t, "secret-token", store.Get(config.BackendTokenKey))

	_, err = execute(t, "", "token", "clear")
	require.NoError(t, err)
	require.NoError(t, store.Load(dataDir))
	assert.Empty(t, store.Get(config.BackendTokenKey))
}

func TestTokenSetRejectsEmpty(t *testing.T) {
	setupEnv(t, nil)

	_, err := execute(t, "\n", "token", "set")
	assert.Error(t, err)
}

func TestConfigBackendURL(t *testing.T) {
	dataDir := setupEnv(t, nil)

	_, err := execute(t, "", "config", "backend-url", "localhost:3000")
	assert.Error(t, err, "a URL without scheme is rejected")

	_, err = execute(t, "", "config", "backend-url", "https://deals.example.com/api")
	require.NoError(t, err)

	userCfg, err := config.LoadUserConfig(dataDir)
	require.NoError(t, err)
	assert.Equal(t, "https://deals.example.com/api", userCfg.Backend.BaseURL)
}
