package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"` // seconds
	SecurityMethod string `toml:"security_method"`
	SSHKeyPath     string `toml:"ssh_key_path,omitempty"`
}

type ChatConfig struct {
	Greeting         string `toml:"greeting"`
	EmptyPlaceholder string `toml:"empty_placeholder"`
}

type UserConfig struct {
	Backend BackendConfig `toml:"backend"`
	Chat    ChatConfig    `toml:"chat"`
}

type Config struct {
	DataDirectory    string
	BackendURL       string
	RequestTimeout   time.Duration
	SecurityMethod   SecurityMethod
	SSHKeyPath       string
	Greeting         string
	EmptyPlaceholder string

	// APIToken is never written to config.toml; it comes from the
	// credential store or DEALCHAT_API_TOKEN.
	APIToken string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("DEALCHAT_BACKEND_URL"); url != "" {
		c.BackendURL = url
	}
	if dataDir := os.Getenv("DEALCHAT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if token := os.Getenv("DEALCHAT_API_TOKEN"); token != "" {
		c.APIToken = token
	}
	if timeout := os.Getenv("DEALCHAT_REQUEST_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	if userCfg.Backend.BaseURL != "" {
		c.BackendURL = userCfg.Backend.BaseURL
	}
	if userCfg.Backend.RequestTimeout > 0 {
		c.RequestTimeout = time.Duration(userCfg.Backend.RequestTimeout) * time.Second
	}
	if userCfg.Backend.SecurityMethod != "" {
		c.SecurityMethod = SecurityMethod(userCfg.Backend.SecurityMethod)
	}
	c.SSHKeyPath = userCfg.Backend.SSHKeyPath
	if userCfg.Chat.Greeting != "" {
		c.Greeting = userCfg.Chat.Greeting
	}
	if userCfg.Chat.EmptyPlaceholder != "" {
		c.EmptyPlaceholder = userCfg.Chat.EmptyPlaceholder
	}
}

func CheckDebug() bool {
	debug := os.Getenv("DEALCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log records conversation ids and tool names
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DEALCHAT_DEBUG=%s) ===", os.Getenv("DEALCHAT_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Default returns the built-in configuration before any file or env is read.
func Default() *Config {
	user := DefaultUserConfig()
	return &Config{
		DataDirectory:    DefaultSystemConfig().DataDirectory,
		BackendURL:       user.Backend.BaseURL,
		RequestTimeout:   time.Duration(user.Backend.RequestTimeout) * time.Second,
		SecurityMethod:   SecurityMethod(user.Backend.SecurityMethod),
		Greeting:         user.Chat.Greeting,
		EmptyPlaceholder: user.Chat.EmptyPlaceholder,
	}
}

func Load() (*Config, error) {
	cfg := Default()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	if systemCfg.DataDirectory != "" {
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	// DEALCHAT_DATA_DIR has to win before the user config is located
	if dataDir := os.Getenv("DEALCHAT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadAPIToken fills APIToken from the credential store unless the
// environment already provided one.
func (c *Config) LoadAPIToken(passphrase string) error {
	if c.APIToken != "" {
		return nil
	}

	store := NewCredentialStore(c.SecurityMethod, ExpandPath(c.SSHKeyPath))
	store.SetPassphrase(passphrase)
	if err := store.Load(c.DataDir()); err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	c.APIToken = store.Get(BackendTokenKey)
	if Debug && DebugLog != nil {
		DebugLog.Printf("[Config] API token loaded from %s store (present=%v)", c.SecurityMethod, c.APIToken != "")
	}
	return nil
}
