package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetConfigDir holds settings.toml.
// Linux/Mac: ~/.config/dealchat
// Windows: %USERPROFILE%\.config\dealchat
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", "dealchat")
}

// GetCacheDir holds the conversation listing cache, which is disposable and
// never synced.
// Linux/Mac: ~/.cache/dealchat
// Windows: %LOCALAPPDATA%\dealchat
func GetCacheDir() string {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "dealchat")
		}
		return filepath.Join(GetHomeDir(), "AppData", "Local", "dealchat")
	}
	return filepath.Join(GetHomeDir(), ".cache", "dealchat")
}

func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetConversationCachePath returns the sqlite file holding the cached
// conversation listing.
func GetConversationCachePath() string {
	return filepath.Join(GetCacheDir(), "conversations.db")
}

func GetHomeDir() string {
	var home string
	if runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		if home == "" {
			home = "C:\\"
		}
		return home
	}

	if home = os.Getenv("HOME"); home == "" {
		home = "/"
	}
	return home
}

// ExpandPath expands a leading ~/ and environment variables
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(GetHomeDir(), path[2:])
	}
	return filepath.Clean(os.ExpandEnv(path))
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions creates dataDir or tightens it to 0700, since it
// holds the API token.
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dataDir, 0700)
	}
	if err != nil {
		return err
	}

	if info.Mode().Perm() != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}
