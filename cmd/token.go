package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dealchat/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the backend API token",
}

var setTokenCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the backend API token",
	Long:  `Set stores the bearer token sent to the backend. Without an argument the token is read from stdin.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token = line
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}

		store, dataDir, err := openCredentialStore()
		if err != nil {
			return err
		}
		if store == nil {
			return nil
		}

		store.Set(config.BackendTokenKey, token)
		if err := store.Save(dataDir); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token saved (%s)\n", store.GetMethod())
		return nil
	},
}

var clearTokenCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored backend API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dataDir, err := openCredentialStore()
		if err != nil || store == nil {
			return err
		}

		store.Delete(config.BackendTokenKey)
		if err := store.Save(dataDir); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed")
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(setTokenCmd)
	tokenCmd.AddCommand(clearTokenCmd)
}

// openCredentialStore loads the existing credentials so other entries
// survive a save. A nil store means the passphrase prompt was cancelled.
func openCredentialStore() (*config.CredentialStore, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}

	dataDir := cfg.DataDir()
	keyPath := config.ExpandPath(cfg.SSHKeyPath)
	store := config.NewCredentialStore(cfg.SecurityMethod, keyPath)

	if cfg.SecurityMethod == config.SecuritySSHKey {
		encrypted, err := config.IsSSHKeyEncrypted(keyPath)
		if err != nil {
			return nil, "", err
		}
		if encrypted {
			ok, err := promptPassphrase(keyPath, func(passphrase string) error {
				store.SetPassphrase(passphrase)
				return store.Load(dataDir)
			})
			if err != nil || !ok {
				return nil, "", err
			}
			return store, dataDir, nil
		}
	}

	if err := store.Load(dataDir); err != nil {
		return nil, "", fmt.Errorf("failed to load credentials: %w", err)
	}
	return store, dataDir, nil
}
