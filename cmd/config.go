package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dealchat/backend"
	"dealchat/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the user configuration",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_dir         %s\n", cfg.DataDir())
		fmt.Fprintf(out, "backend_url      %s\n", cfg.BackendURL)
		fmt.Fprintf(out, "request_timeout  %s\n", cfg.RequestTimeout)
		fmt.Fprintf(out, "security_method  %s\n", cfg.SecurityMethod)
		if cfg.SecurityMethod == config.SecuritySSHKey {
			fmt.Fprintf(out, "ssh_key_path     %s\n", cfg.SSHKeyPath)
		}
		fmt.Fprintf(out, "listing_cache    %s\n", config.GetConversationCachePath())
		return nil
	},
}

var backendURLCmd = &cobra.Command{
	Use:   "backend-url <url>",
	Short: "Set the agent backend base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Same validation the client applies at startup
		if _, err := backend.NewClient(args[0]); err != nil {
			return err
		}
		return updateUserConfig(func(u *config.UserConfig) {
			u.Backend.BaseURL = args[0]
		})
	},
}

var timeoutCmd = &cobra.Command{
	Use:   "timeout <seconds>",
	Short: "Set the per-request timeout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs <= 0 {
			return fmt.Errorf("timeout must be a positive number of seconds")
		}
		return updateUserConfig(func(u *config.UserConfig) {
			u.Backend.RequestTimeout = secs
		})
	},
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(backendURLCmd)
	configCmd.AddCommand(timeoutCmd)
}

func updateUserConfig(change func(*config.UserConfig)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	userCfg, err := config.LoadUserConfig(cfg.DataDir())
	if err != nil {
		return err
	}
	change(userCfg)

	if err := config.SaveUserConfig(userCfg, cfg.DataDir()); err != nil {
		return err
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Config] User config updated in %s", cfg.DataDir())
	}
	return nil
}
