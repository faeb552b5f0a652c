package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dealchat/config"
	appmodel "dealchat/model"
	"dealchat/storage"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage conversations stored by the backend",
}

var listConversationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, done, err := headlessModel()
		if err != nil {
			return err
		}
		defer done()

		msg, _ := runCmd(m.FetchConversationList()).(appmodel.ConversationsListMsg)
		if !m.ApplyList(msg) {
			return fmt.Errorf("failed to list conversations: %w", msg.Err)
		}
		if msg.Cached {
			fmt.Fprintf(os.Stderr, "Backend unreachable (%v), showing cached listing\n", msg.Err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tUPDATED")
		for _, c := range m.Listing() {
			updated := "-"
			if !c.UpdatedAt.IsZero() {
				updated = c.UpdatedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, storage.ConversationTitle(c), c.MessageCount, updated)
		}
		return w.Flush()
	},
}

var showConversationCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored conversation",
	Args:  cobra.MatchAll(cobra.ExactArgs(1), conversationIDArg),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, done, err := headlessModel()
		if err != nil {
			return err
		}
		defer done()

		msg, _ := runCmd(m.LoadConversation(args[0])).(appmodel.ConversationLoadedMsg)
		if !m.ApplyLoad(msg) {
			return fmt.Errorf("failed to load conversation %s: %w", args[0], msg.Err)
		}

		out := cmd.OutOrStdout()
		for _, message := range m.Messages() {
			text := message.Text()
			for _, call := range message.ToolCalls {
				text += fmt.Sprintf("\n  (used %s)", call.Name)
			}
			if text == "" {
				continue
			}
			fmt.Fprintf(out, "[%s]\n%s\n\n", message.Role, text)
		}
		return nil
	},
}

var deleteConversationCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored conversation",
	Args:  cobra.MatchAll(cobra.ExactArgs(1), conversationIDArg),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, done, err := headlessModel()
		if err != nil {
			return err
		}
		defer done()

		msg, _ := runCmd(m.DeleteConversation(args[0])).(appmodel.ConversationDeletedMsg)
		if !m.ApplyDelete(msg) {
			return fmt.Errorf("failed to delete conversation %s: %w", args[0], msg.Err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var exportConversationCmd = &cobra.Command{
	Use:   "export <id> [path]",
	Short: "Export a stored conversation as JSON",
	Long:  `Export writes the raw conversation to path, or to ~/Downloads when no path is given.`,
	Args:  cobra.MatchAll(cobra.RangeArgs(1, 2), conversationIDArg),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, done, err := headlessModel()
		if err != nil {
			return err
		}
		defer done()

		path := storage.GenerateExportPath(args[0])
		if len(args) == 2 {
			path = config.ExpandPath(args[1])
		}

		msg, _ := runCmd(m.ExportConversation(args[0], path)).(appmodel.ConversationExportedMsg)
		if msg.Err != nil {
			return fmt.Errorf("failed to export conversation %s: %w", args[0], msg.Err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", msg.Path)
		return nil
	},
}

func init() {
	conversationsCmd.AddCommand(listConversationsCmd)
	conversationsCmd.AddCommand(showConversationCmd)
	conversationsCmd.AddCommand(deleteConversationCmd)
	conversationsCmd.AddCommand(exportConversationCmd)
}

// conversationIDArg rejects a blank id before any model command is built,
// since a nil command would otherwise read as success.
func conversationIDArg(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("conversation id must not be empty")
	}
	return nil
}

// headlessModel builds a Model for one-shot commands.
func headlessModel() (*appmodel.Model, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	ok, err := unlockCredentials(cfg)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("credentials are locked")
	}

	return newModel(cfg)
}

// runCmd executes a model command synchronously.
func runCmd(c tea.Cmd) tea.Msg {
	if c == nil {
		return nil
	}
	return c()
}
