package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dealchat/api"
)

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)

	// Remove leading/trailing hyphens and dots
	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "conversation"
	}

	return name
}

// GenerateExportPath generates a default export path in ~/Downloads
func GenerateExportPath(title string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE") // Windows fallback
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("dealchat-%s-%s.json", SanitizeFilename(title), timestamp)

	return filepath.Join(homeDir, "Downloads", filename)
}

// ConversationTitle returns the listing title, or a dated fallback for
// conversations the backend has not named yet.
func ConversationTitle(conv api.ConversationSummary) string {
	title := strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(conv.Title))
	if title != "" {
		return title
	}
	if conv.UpdatedAt.IsZero() {
		return "Untitled conversation"
	}
	return fmt.Sprintf("Conversation %s", conv.UpdatedAt.Local().Format("Jan 2, 3:04 PM"))
}

// ExportConversation writes a conversation exactly as the backend returned it.
func ExportConversation(conv *api.Conversation, exportPath string) error {
	if conv == nil {
		return fmt.Errorf("no conversation to export")
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// 0700 - user-only access
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600 - exports contain client data
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
