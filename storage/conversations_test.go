package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealchat/api"
)

func newTestCache(t *testing.T) (*ConversationCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "conversations.db")
	cache, err := NewConversationCache(path)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, path
}

func TestConversationCacheReplaceAndList(t *testing.T) {
	cache, _ := newTestCache(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, cache.Replace([]api.ConversationSummary{
		{ID: "old", Title: "Acme renewal", UpdatedAt: now.Add(-48 * time.Hour), MessageCount: 4},
		{ID: "new", Title: "Globex pipeline", UpdatedAt: now, MessageCount: 2},
	}))

	list, err := cache.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID, "most recent first")
	assert.Equal(t, "Globex pipeline", list[0].Title)
	assert.Equal(t, 2, list[0].MessageCount)
	assert.True(t, list[0].UpdatedAt.Equal(now), "got %v", list[0].UpdatedAt)

	// A second Replace drops rows missing from the new listing
	require.NoError(t, cache.Replace([]api.ConversationSummary{{ID: "other", Title: "Initech", UpdatedAt: now}}))
	list, err = cache.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "other", list[0].ID)
}

func TestConversationCacheRemove(t *testing.T) {
	cache, _ := newTestCache(t)
	require.NoError(t, cache.Replace([]api.ConversationSummary{
		{ID: "a", Title: "A", UpdatedAt: time.Now()},
		{ID: "b", Title: "B", UpdatedAt: time.Now()},
	}))

	require.NoError(t, cache.Remove("a"))
	require.NoError(t, cache.Remove("does-not-exist"))

	list, err := cache.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestConversationCacheReopen(t *testing.T) {
	cache, path := newTestCache(t)
	require.NoError(t, cache.Replace([]api.ConversationSummary{{ID: "a", Title: "A", UpdatedAt: time.Now()}}))
	require.NoError(t, cache.Close())

	// Schema creation and migration must be idempotent
	reopened, err := NewConversationCache(path)
	require.NoError(t, err)
	defer reopened.Close()

	hasCachedAt, err := reopened.columnExists("conversations", "cached_at")
	require.NoError(t, err)
	assert.True(t, hasCachedAt)

	list, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
