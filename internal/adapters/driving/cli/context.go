package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	statsUnused int
	statsJSON   bool
	linksJSON   bool
)

var linkCmd = &cobra.Command{
	Use:   "link [message-id] [chunk-id...]",
	Short: "Record that a message used the given chunks",
	Long: `Links a logged chat message to the chunks that informed it.
Linking a pair that already exists is a no-op.

Example:
  ltmc link msg-42 17 18 31`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLink,
}

var linksCmd = &cobra.Command{
	Use:   "links [message-id]",
	Short: "List the chunks linked to a message",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinks,
}

var chunkMessagesCmd = &cobra.Command{
	Use:   "chunk-messages [chunk-id]",
	Short: "List the messages linked to a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkMessages,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how often chunks are used by messages",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	for _, c := range []*cobra.Command{linksCmd, chunkMessagesCmd} {
		c.Flags().BoolVar(&linksJSON, "json", false, "output as JSON")
	}
	statsCmd.Flags().IntVar(&statsUnused, "unused", 0, "also list up to N chunks no message has used")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(chunkMessagesCmd)
	rootCmd.AddCommand(statsCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	if err := requireService(contextService != nil, "context"); err != nil {
		return err
	}

	chunkIDs, err := parseIDs(args[1:])
	if err != nil {
		return err
	}
	added, err := contextService.Link(cmd.Context(), args[0], chunkIDs)
	if err != nil {
		return fmt.Errorf("link failed: %w", err)
	}
	cmd.Printf("%s %d new link(s) for %s\n", styles.Success.Render("Recorded"), added, args[0])
	return nil
}

func runLinks(cmd *cobra.Command, args []string) error {
	if err := requireService(contextService != nil, "context"); err != nil {
		return err
	}

	ids, err := contextService.LinksForMessage(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get links: %w", err)
	}
	if linksJSON {
		return printJSON(cmd, ids)
	}
	if len(ids) == 0 {
		cmd.Println("No linked chunks.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func runChunkMessages(cmd *cobra.Command, args []string) error {
	if err := requireService(contextService != nil, "context"); err != nil {
		return err
	}

	chunkID, err := parseID(args[0])
	if err != nil {
		return err
	}
	ids, err := contextService.MessagesForChunk(cmd.Context(), chunkID)
	if err != nil {
		return fmt.Errorf("failed to get messages: %w", err)
	}
	if linksJSON {
		return printJSON(cmd, ids)
	}
	if len(ids) == 0 {
		cmd.Println("No linked messages.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

type chunkUsage struct {
	ChunkID  int64 `json:"chunk_id"`
	Messages int   `json:"messages"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireService(contextService != nil, "context"); err != nil {
		return err
	}

	stats, err := contextService.UsageStatistics(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get usage statistics: %w", err)
	}
	usage := sortedUsage(stats)

	var unused []int64
	if statsUnused > 0 {
		unused, err = contextService.UnusedChunks(cmd.Context(), statsUnused)
		if err != nil {
			return fmt.Errorf("failed to get unused chunks: %w", err)
		}
	}

	if statsJSON {
		return printJSON(cmd, struct {
			Usage  []chunkUsage `json:"usage"`
			Unused []int64      `json:"unused,omitempty"`
		}{usage, unused})
	}

	if len(usage) == 0 {
		cmd.Println("No chunks have been linked yet.")
	} else {
		rows := make([][]string, len(usage))
		for i, u := range usage {
			rows[i] = []string{strconv.FormatInt(u.ChunkID, 10), strconv.Itoa(u.Messages)}
		}
		cmd.Println(table([]string{"CHUNK", "MESSAGES"}, rows))
	}
	if len(unused) > 0 {
		cmd.Println()
		cmd.Println(styles.Muted.Render("Unused: " + joinIDs(unused)))
	}
	return nil
}

// sortedUsage orders chunks by message count, most used first.
func sortedUsage(stats map[int64]int) []chunkUsage {
	usage := make([]chunkUsage, 0, len(stats))
	for id, n := range stats {
		usage = append(usage, chunkUsage{ChunkID: id, Messages: n})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Messages != usage[j].Messages {
			return usage[i].Messages > usage[j].Messages
		}
		return usage[i].ChunkID < usage[j].ChunkID
	})
	return usage
}
