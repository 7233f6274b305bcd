package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

var (
	chatConversation string
	chatRole         string
	chatAgent        string
	chatTool         string
	chatMessageID    string
	chatHistoryLimit int
	chatJSON         bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Record and read conversation messages",
}

var chatLogCmd = &cobra.Command{
	Use:   "log [content]",
	Short: "Log a conversation message",
	Long: `Logs a message to the chat log and prints its id. The id is what
context links refer to.

Example:
  ltmc chat log -c session-1 --role assistant "Deploy with make release."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChatLog,
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "Show the latest messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatHistory,
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete [message-id]",
	Short: "Delete a message and its context links",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatDelete,
}

func init() {
	chatLogCmd.Flags().StringVarP(&chatConversation, "conversation", "c", "", "conversation id (required)")
	chatLogCmd.Flags().StringVar(&chatRole, "role", string(domain.RoleUser), "speaker: user, assistant, system or tool")
	chatLogCmd.Flags().StringVar(&chatAgent, "agent", "", "name of the agent that produced the message")
	chatLogCmd.Flags().StringVar(&chatTool, "tool", "", "name of the tool logging the message")
	chatLogCmd.Flags().StringVar(&chatMessageID, "id", "", "message id (default: generated)")
	chatHistoryCmd.Flags().IntVarP(&chatHistoryLimit, "limit", "n", 20, "maximum number of messages")
	for _, c := range []*cobra.Command{chatLogCmd, chatHistoryCmd} {
		c.Flags().BoolVar(&chatJSON, "json", false, "output as JSON")
	}

	chatCmd.AddCommand(chatLogCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatLog(cmd *cobra.Command, args []string) error {
	if err := requireService(chatService != nil, "chat"); err != nil {
		return err
	}

	msg, err := chatService.Log(cmd.Context(), domain.Message{
		ID:             chatMessageID,
		ConversationID: chatConversation,
		Role:           domain.Role(chatRole),
		Content:        strings.Join(args, " "),
		AgentName:      chatAgent,
		SourceTool:     chatTool,
	})
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}

	if chatJSON {
		return printJSON(cmd, msg)
	}
	cmd.Println(msg.ID)
	return nil
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	if err := requireService(chatService != nil, "chat"); err != nil {
		return err
	}

	msgs, err := chatService.History(cmd.Context(), args[0], chatHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if chatJSON {
		return printJSON(cmd, msgs)
	}
	if len(msgs) == 0 {
		cmd.Println("No messages.")
		return nil
	}
	for i := range msgs {
		m := msgs[i]
		cmd.Printf("%s %s %s\n",
			styles.Muted.Render(m.CreatedAt.Local().Format(time.DateTime)),
			styles.Header.Render(string(m.Role)+":"),
			m.Content)
		cmd.Printf("  %s\n", styles.Muted.Render(m.ID))
	}
	return nil
}

func runChatDelete(cmd *cobra.Command, args []string) error {
	if err := requireService(chatService != nil, "chat"); err != nil {
		return err
	}

	deleted, err := chatService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if !deleted {
		return fmt.Errorf("message %s: %w", args[0], domain.ErrNotFound)
	}
	cmd.Printf("%s %s\n", styles.Success.Render("Deleted message"), args[0])
	return nil
}
