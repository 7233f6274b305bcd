package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui"
)

var tuiTopK int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse memory interactively",
	Long: `Opens a terminal browser over stored memory.

Type a query and press enter to recall chunks, enter again to read the
resource a chunk came from. Tab switches to the resource list, where d
deletes the highlighted resource.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "limit", "n", 0, "chunks per recall (0 = configured default)")
	rootCmd.AddCommand(tuiCmd)
}

func newTUIApp(cmd *cobra.Command) (*tui.App, error) {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return nil, err
	}
	if err := requireService(searchService != nil, "search"); err != nil {
		return nil, err
	}

	app, err := tui.NewApp(tui.NewPorts(searchService, resourceService), tui.WithTopK(tuiTopK))
	if err != nil {
		return nil, err
	}
	return app.WithContext(cmd.Context()), nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	app, err := newTUIApp(cmd)
	if err != nil {
		return err
	}
	return app.Run()
}
