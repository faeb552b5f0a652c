package config

const (
	DefaultGreeting         = "Hi! I can look up your clients and update their records. What would you like to do?"
	DefaultEmptyPlaceholder = "This conversation has no messages to show."
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/dealchat",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8080/api",
			RequestTimeout: 60,
			SecurityMethod: string(SecurityPlainText),
		},
		Chat: ChatConfig{
			Greeting:         DefaultGreeting,
			EmptyPlaceholder: DefaultEmptyPlaceholder,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# dealchat System Configuration
# Location: ~/.config/dealchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory holding config.toml, the stored API token and debug.log
data_directory = "~/.local/share/dealchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# dealchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[backend]
# Base URL of the agent API (POST /chat, POST /confirm, /conversations)
base_url = "http://localhost:8080/api"

# Seconds to wait for a single chat or confirm round trip
request_timeout = 60

# How the API token is stored: "plaintext" or "ssh_key"
security_method = "plaintext"

# SSH private key used to encrypt the token when security_method = "ssh_key"
# ssh_key_path = "~/.ssh/id_ed25519"

[chat]
# First message shown in a new conversation
greeting = "Hi! I can look up your clients and update their records. What would you like to do?"

# Shown when a loaded conversation has nothing displayable
empty_placeholder = "This conversation has no messages to show."
`
}
