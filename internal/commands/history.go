package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/silanhu/easycli/internal/history"
	"github.com/silanhu/easycli/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage conversation history",
	Long:  `View and manage your local conversation history.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversations",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref> <path>",
	Short: "Export a conversation to markdown or JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryExport,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
}

// resolveRef opens the default store and resolves a conversation
// reference (@last, index, title substring, or ID).
func resolveRef(ref string) (*history.Store, string, error) {
	store, err := history.DefaultStore()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open history: %w", err)
	}
	id, err := history.NewResolver(store).Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	return store, id, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	conversations, err := store.ListConversations()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tMODEL\tMESSAGES\tUPDATED")
	for i, conv := range conversations {
		star := ""
		if fav, _ := store.IsFavorite(conv.ID); fav {
			star = " ★"
		}
		title := conv.Title
		if len(title) > 40 {
			title = title[:40] + "..."
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%d\t%s\n",
			i+1, star, title, conv.Model, len(conv.Messages),
			conv.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, id, err := resolveRef(args[0])
	if err != nil {
		return err
	}

	conv, err := store.GetConversation(id)
	if err != nil {
		return err
	}

	fmt.Printf("ID: %s\n", conv.ID)
	fmt.Printf("Title: %s\n", conv.Title)
	fmt.Printf("Model: %s\n", conv.Model)
	fmt.Printf("Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Messages: %d\n\n", len(conv.Messages))

	width := getTerminalWidth() - 4
	tty := isStdoutTTY()
	for i, msg := range conv.Messages {
		role := "You"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Printf("[%d] %s (%s):\n", i+1, role, msg.Timestamp.Format("15:04"))
		fmt.Printf("  %s\n\n", formatHistoryContent(msg, width, tty))
	}

	return nil
}

// formatHistoryContent prepares one message body for history show.
// Assistant replies render as markdown on a terminal; everything else
// prints plain, truncated to keep long conversations scannable.
func formatHistoryContent(msg history.Message, width int, tty bool) string {
	if msg.Role == "assistant" && tty {
		if rendered, err := render.MarkdownWithWidth(msg.Content, width); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	content := msg.Content
	if len(content) > 500 {
		content = content[:500] + "..."
	}
	return content
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, id, err := resolveRef(args[0])
	if err != nil {
		return err
	}

	if err := store.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	fmt.Printf("Deleted conversation: %s\n", id)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Println("All conversations deleted.")
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, id, err := resolveRef(args[0])
	if err != nil {
		return err
	}

	if err := store.ExportToFile(id, args[1]); err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", args[1])
	return nil
}
