package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dealchat/api"
)

// ConversationCache keeps the last conversation listing fetched from the
// backend so the history list still opens while offline.
type ConversationCache struct {
	db *sql.DB
}

func NewConversationCache(dbPath string) (*ConversationCache, error) {
	// 0700 - user-only access
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &ConversationCache{db: db}

	if err := cache.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cache, nil
}

func (c *ConversationCache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		message_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return err
	}

	if err := c.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	return nil
}

// migrateSchema adds columns introduced after the first release
func (c *ConversationCache) migrateSchema() error {
	hasCachedAt, err := c.columnExists("conversations", "cached_at")
	if err != nil {
		return fmt.Errorf("failed to check for cached_at column: %w", err)
	}

	if !hasCachedAt {
		if _, err := c.db.Exec(`ALTER TABLE conversations ADD COLUMN cached_at DATETIME`); err != nil {
			return fmt.Errorf("failed to add cached_at column: %w", err)
		}
	}

	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (c *ConversationCache) columnExists(tableName, columnName string) (bool, error) {
	rows, err := c.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var dataType string
		var notNull int
		var defaultValue interface{}
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}

	return false, rows.Err()
}

// Replace swaps the cached listing for a fresh one in a single transaction.
func (c *ConversationCache) Replace(conversations []api.ConversationSummary) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM conversations`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO conversations (id, title, updated_at, message_count, cached_at)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, conv := range conversations {
		if _, err := stmt.Exec(conv.ID, conv.Title, conv.UpdatedAt.UTC(), conv.MessageCount, now); err != nil {
			return fmt.Errorf("failed to cache conversation %s: %w", conv.ID, err)
		}
	}

	return tx.Commit()
}

// List returns the cached listing, most recently updated first.
func (c *ConversationCache) List() ([]api.ConversationSummary, error) {
	rows, err := c.db.Query(`
	SELECT id, title, updated_at, message_count
	FROM conversations
	ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []api.ConversationSummary
	for rows.Next() {
		var conv api.ConversationSummary
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.UpdatedAt, &conv.MessageCount); err != nil {
			continue
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

func (c *ConversationCache) Remove(id string) error {
	_, err := c.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	return err
}

func (c *ConversationCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
