package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the nearest vectors to a query",
	Long: `Embeds the query and returns the nearest vector ids with their cosine
similarity. Use retrieve to see the matching chunk text.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search and show the matching chunks",
	Long: `Embeds the query, searches the vector index and resolves every hit to
its chunk and resource.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, retrieveCmd} {
		c.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default: search.top_k)")
		c.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
		rootCmd.AddCommand(c)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireService(searchService != nil, "search"); err != nil {
		return err
	}

	hits, err := searchService.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, hits)
	}
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	rows := make([][]string, len(hits))
	for i, hit := range hits {
		rows[i] = []string{strconv.Itoa(i + 1), strconv.FormatInt(hit.VectorID, 10), formatScore(hit.Score)}
	}
	cmd.Println(table([]string{"#", "VECTOR", "SCORE"}, rows))
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if err := requireService(searchService != nil, "search"); err != nil {
		return err
	}

	results, err := searchService.Retrieve(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}
	printRetrieved(cmd, results)
	return nil
}

func printRetrieved(cmd *cobra.Command, results []domain.RetrievedChunk) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(styles.Title.Render("Results:"))
	cmd.Println()
	for i := range results {
		r := results[i]
		cmd.Printf("  [%d] %s #%d %s\n", i+1, r.ResourceName, r.Position, styles.Score.Render(formatScore(r.Score)))
		cmd.Printf("      %s\n", styles.Muted.Render(fmt.Sprintf("chunk %d, vector %d, %s", r.ChunkID, r.VectorID, r.Type)))
		cmd.Printf("      %s\n", snippet(r.Content, 120))
		cmd.Println()
	}
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}
