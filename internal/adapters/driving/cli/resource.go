package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

var (
	resourceListType  string
	resourceListLimit int
	resourceJSON      bool
	resolveJSON       bool
)

var resourceCmd = &cobra.Command{
	Use:     "resource",
	Aliases: []string{"resources"},
	Short:   "Inspect and delete stored resources",
}

var resourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored resources, newest first",
	Args:  cobra.NoArgs,
	RunE:  runResourceList,
}

var resourceGetCmd = &cobra.Command{
	Use:   "get [resource-id]",
	Short: "Show a resource and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runResourceGet,
}

var resourceContentCmd = &cobra.Command{
	Use:   "content [resource-id]",
	Short: "Print the reassembled text of a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runResourceContent,
}

var resourceDeleteCmd = &cobra.Command{
	Use:   "delete [resource-id]",
	Short: "Delete a resource with its chunks, vectors and links",
	Args:  cobra.ExactArgs(1),
	RunE:  runResourceDelete,
}

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Operate on individual chunks",
}

var chunkDeleteCmd = &cobra.Command{
	Use:   "delete [chunk-id]",
	Short: "Delete one chunk with its vector and links",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkDelete,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [vector-id...]",
	Short: "Map vector ids to their chunks",
	Long: `Resolves vector ids returned by search to chunk metadata.
Unknown ids are listed as missing rather than failing the whole batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resourceListCmd.Flags().StringVarP(&resourceListType, "type", "t", "", "only list resources of this type")
	resourceListCmd.Flags().IntVarP(&resourceListLimit, "limit", "n", 0, "maximum number of resources")
	for _, c := range []*cobra.Command{resourceListCmd, resourceGetCmd} {
		c.Flags().BoolVar(&resourceJSON, "json", false, "output as JSON")
	}
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output as JSON")

	resourceCmd.AddCommand(resourceListCmd)
	resourceCmd.AddCommand(resourceGetCmd)
	resourceCmd.AddCommand(resourceContentCmd)
	resourceCmd.AddCommand(resourceDeleteCmd)
	chunkCmd.AddCommand(chunkDeleteCmd)
	rootCmd.AddCommand(resourceCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runResourceList(cmd *cobra.Command, _ []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	list, err := resourceService.List(cmd.Context(), driving.ListOptions{
		Type:  domain.ResourceType(resourceListType),
		Limit: resourceListLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}

	if resourceJSON {
		return printJSON(cmd, list)
	}
	if len(list) == 0 {
		cmd.Println("No resources stored.")
		return nil
	}

	rows := make([][]string, len(list))
	for i := range list {
		r := list[i]
		rows[i] = []string{r.ID, r.Name, string(r.Type), strconv.Itoa(r.ChunkCount), r.CreatedAt.Local().Format(time.DateTime)}
	}
	cmd.Println(table([]string{"ID", "NAME", "TYPE", "CHUNKS", "CREATED"}, rows))
	return nil
}

func runResourceGet(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	res, err := resourceService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get resource: %w", err)
	}
	chunks, err := resourceService.Chunks(cmd.Context(), res.ID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if resourceJSON {
		return printJSON(cmd, struct {
			Resource *domain.Resource
			Chunks   []domain.Chunk
		}{res, chunks})
	}

	cmd.Println(styles.Title.Render(res.Name))
	cmd.Printf("  ID:      %s\n", res.ID)
	cmd.Printf("  Type:    %s\n", res.Type)
	cmd.Printf("  Created: %s\n", res.CreatedAt.Local().Format(time.DateTime))
	cmd.Println()

	rows := make([][]string, len(chunks))
	for i := range chunks {
		c := chunks[i]
		rows[i] = []string{
			strconv.Itoa(c.Position),
			strconv.FormatInt(c.ID, 10),
			strconv.FormatInt(c.VectorID, 10),
			snippet(c.Content, 60),
		}
	}
	cmd.Println(table([]string{"POS", "CHUNK", "VECTOR", "CONTENT"}, rows))
	return nil
}

func runResourceContent(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	content, err := resourceService.Content(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read resource: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runResourceDelete(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	deleted, err := resourceService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	if !deleted {
		return fmt.Errorf("resource %s: %w", args[0], domain.ErrNotFound)
	}
	cmd.Printf("%s %s\n", styles.Success.Render("Deleted resource"), args[0])
	return nil
}

func runChunkDelete(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	deleted, err := resourceService.DeleteChunk(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	if !deleted {
		return fmt.Errorf("chunk %d: %w", id, domain.ErrNotFound)
	}
	cmd.Printf("%s %d\n", styles.Success.Render("Deleted chunk"), id)
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	result, err := resourceService.ResolveChunks(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if resolveJSON {
		return printJSON(cmd, result)
	}

	rows := make([][]string, len(result.Chunks))
	for i := range result.Chunks {
		c := result.Chunks[i]
		rows[i] = []string{
			strconv.FormatInt(c.VectorID, 10),
			strconv.FormatInt(c.ChunkID, 10),
			c.ResourceName,
			strconv.Itoa(c.Position),
			snippet(c.Content, 60),
		}
	}
	if len(rows) > 0 {
		cmd.Println(table([]string{"VECTOR", "CHUNK", "RESOURCE", "POS", "CONTENT"}, rows))
	}
	if len(result.Missing) > 0 {
		cmd.Println(styles.Warning.Render("Missing: " + joinIDs(result.Missing)))
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int64) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += ", "
		}
		s += strconv.FormatInt(id, 10)
	}
	return s
}
