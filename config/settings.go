package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

func userConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// LoadSystemConfig reads settings.toml, writing the template on first run.
func LoadSystemConfig() (*SystemConfig, error) {
	cfg := DefaultSystemConfig()
	created, err := decodeOrCreate(GetSettingsFilePath(), GenerateSystemConfigTemplate(), cfg)
	if err != nil {
		return nil, fmt.Errorf("system config: %w", err)
	}
	if created && DebugLog != nil {
		DebugLog.Printf("[Config] Wrote default %s", GetSettingsFilePath())
	}
	return cfg, nil
}

// LoadUserConfig reads <dataDir>/config.toml. Keys the user left out keep
// their defaults.
func LoadUserConfig(dataDir string) (*UserConfig, error) {
	cfg := DefaultUserConfig()
	if _, err := decodeOrCreate(userConfigPath(dataDir), GenerateUserConfigTemplate(), cfg); err != nil {
		return nil, fmt.Errorf("user config: %w", err)
	}

	if err := validateUserConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeOrCreate decodes path into v, or writes template there when the file
// does not exist yet and leaves v untouched.
func decodeOrCreate(path, template string, v any) (bool, error) {
	if !FileExists(path) {
		return true, writeTemplate(path, template)
	}

	if _, err := toml.DecodeFile(path, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return false, nil
}

func writeTemplate(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if FileExists(path) {
		return nil
	}
	// 0600 - user-only access
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func validateUserConfig(cfg *UserConfig) error {
	switch SecurityMethod(cfg.Backend.SecurityMethod) {
	case SecurityPlainText:
	case SecuritySSHKey:
		if cfg.Backend.SSHKeyPath == "" {
			return fmt.Errorf("security_method %q requires ssh_key_path", cfg.Backend.SecurityMethod)
		}
	default:
		return fmt.Errorf("unknown security_method: %q", cfg.Backend.SecurityMethod)
	}

	if cfg.Backend.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}

	return nil
}

// SaveUserConfig rewrites config.toml from cfg. Template comments are lost.
func SaveUserConfig(cfg *UserConfig, dataDir string) error {
	if err := validateUserConfig(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(userConfigPath(dataDir), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create user config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}
	return nil
}

func CreateDefaultSystemConfig() error {
	return writeTemplate(GetSettingsFilePath(), GenerateSystemConfigTemplate())
}

func CreateDefaultUserConfig(dataDir string) error {
	return writeTemplate(userConfigPath(dataDir), GenerateUserConfigTemplate())
}
