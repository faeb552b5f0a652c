package cmd

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dealchat/backend"
	"dealchat/config"
	appmodel "dealchat/model"
	"dealchat/storage"
	"dealchat/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

var rootCmd = &cobra.Command{
	Use:     "dealchat",
	Short:   "Terminal client for the deal agent",
	Long:    `dealchat talks to the deal agent backend. Tool calls that change data are shown as proposals and only run after you confirm them.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runChat(); err != nil {
			log.Fatalf("dealchat: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(configCmd)
}

// showError displays a fatal startup problem the same way the chat would.
func showError(title string, err error) {
	p := tea.NewProgram(ui.NewErrorModal(title, err.Error()), tea.WithAltScreen())
	if _, runErr := p.Run(); runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func runChat() error {
	cfg, err := loadConfig()
	if err != nil {
		showError("Configuration Error", err)
		return nil
	}

	ok, err := unlockCredentials(cfg)
	if err != nil {
		showError("Credential Error", err)
		return nil
	}
	if !ok {
		return nil
	}

	m, closeCache, err := newModel(cfg)
	if err != nil {
		showError("Backend Error", err)
		return nil
	}
	defer closeCache()

	p := tea.NewProgram(
		ui.NewAppView(m, Version, License),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chat: %w", err)
	}
	return nil
}

// loadConfig loads settings.toml and the user config, writing templates on
// first run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	config.InitDebugLog(cfg.DataDir())
	return cfg, nil
}

// unlockCredentials loads the API token, asking for the SSH key passphrase
// when the key is encrypted. It reports false if the user gave up.
func unlockCredentials(cfg *config.Config) (bool, error) {
	if cfg.APIToken != "" || cfg.SecurityMethod != config.SecuritySSHKey {
		return true, cfg.LoadAPIToken("")
	}

	keyPath := config.ExpandPath(cfg.SSHKeyPath)
	encrypted, err := config.IsSSHKeyEncrypted(keyPath)
	if err != nil {
		return false, err
	}
	if !encrypted {
		return true, cfg.LoadAPIToken("")
	}

	return promptPassphrase(keyPath, func(passphrase string) error {
		return ui.LoadCredentialsWithPassphrase(cfg, passphrase)
	})
}

func promptPassphrase(keyPath string, unlock func(string) error) (bool, error) {
	p := tea.NewProgram(ui.NewPassphraseModal(keyPath, unlock), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run passphrase prompt: %w", err)
	}

	modal, ok := final.(ui.PassphraseModal)
	if !ok || modal.IsCancelled() || !modal.Unlocked() {
		return false, nil
	}
	return true, nil
}

// newModel wires the backend client and the listing cache into a Model. The
// returned func closes the cache.
func newModel(cfg *config.Config) (*appmodel.Model, func(), error) {
	client, err := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithToken(cfg.APIToken),
		backend.WithUserAgent(backend.UserAgent(Version)),
	)
	if err != nil {
		return nil, nil, err
	}

	// The cache only backs offline listing, so failing to open it is not fatal
	var listing appmodel.ListingCache
	closeCache := func() {}
	cache, err := storage.NewConversationCache(config.GetConversationCachePath())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Main] Conversation cache unavailable: %v", err)
		}
	} else {
		listing = cache
		closeCache = func() { cache.Close() }
	}

	return appmodel.NewModel(cfg, client, listing), closeCache, nil
}
