package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/logger"
	"github.com/custodia-labs/ltmc/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Store files as they change under a directory",
	Long: `Watches a directory tree and keeps its text files stored as resources.
A created or modified file replaces the previous version of that file;
removing a file deletes its resource. Hidden files and directories are
skipped. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(dir)
	defer w.Close()

	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	ing := watcher.NewIngestor(resourceService)
	ing.Run(ctx, changes, func(c watcher.Change, resourceID string) {
		if resourceID == "" {
			cmd.Printf("%s %s\n", styles.Muted.Render(string(c.Type)), c.Path)
			return
		}
		cmd.Printf("%s %s -> %s\n", styles.Success.Render(string(c.Type)), c.Path, resourceID)
	})

	logger.Info("watch stopped after %d change(s)", ing.Applied())
	return nil
}
