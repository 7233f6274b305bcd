package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/extract"
	"github.com/custodia-labs/ltmc/internal/watcher"
)

var (
	storeName    string
	storeType    string
	storeContent string
	storeJSON    bool
)

var storeCmd = &cobra.Command{
	Use:   "store [file]",
	Short: "Store content as a new resource",
	Long: `Chunks, embeds and stores content as a resource.

Content comes from the file argument, from --content, or from stdin when the
file is "-". The resource type is inferred from the file name unless --type
is given.

Examples:
  ltmc store notes.md
  ltmc store --name plan --type todo --content "ship the release"
  git log | ltmc store - --name changelog`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStore,
}

func init() {
	storeCmd.Flags().StringVar(&storeName, "name", "", "resource name (default: file name)")
	storeCmd.Flags().StringVarP(&storeType, "type", "t", "",
		"resource type: document, code, chat or todo")
	storeCmd.Flags().StringVarP(&storeContent, "content", "c", "", "content to store instead of a file")
	storeCmd.Flags().BoolVar(&storeJSON, "json", false, "output the resource as JSON")
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	req, err := buildStoreRequest(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	res, err := resourceService.Store(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("store failed: %w", err)
	}

	if storeJSON {
		return printJSON(cmd, res)
	}
	cmd.Printf("%s %s (%s, %d chunks)\n", styles.Success.Render("Stored"), res.ID, res.Name, res.ChunkCount)
	return nil
}

func buildStoreRequest(stdin io.Reader, args []string) (driving.StoreRequest, error) {
	req := driving.StoreRequest{Name: storeName, Type: domain.ResourceType(storeType)}

	switch {
	case storeContent != "":
		if len(args) > 0 {
			return req, fmt.Errorf("%w: use either a file or --content", domain.ErrValidation)
		}
		req.Content = storeContent
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return req, fmt.Errorf("reading stdin: %w", err)
		}
		req.Content = string(data)
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return req, fmt.Errorf("reading %s: %w", args[0], err)
		}
		if req.Content, err = extract.Text(args[0], data); err != nil {
			return req, err
		}
		if req.Name == "" {
			req.Name = filepath.Base(args[0])
		}
		if req.Type == "" {
			req.Type = watcher.ResourceTypeFor(args[0])
		}
	default:
		return req, fmt.Errorf("%w: a file, \"-\" or --content is required", domain.ErrValidation)
	}

	if req.Type == "" {
		req.Type = domain.ResourceTypeDocument
	}
	return req, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
