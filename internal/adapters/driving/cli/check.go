package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

var checkRepair bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the resource store agrees with the vector index",
	Long: `Compares every chunk's vector id with the vector index.

Orphaned vectors (index entries no chunk references) are harmless but waste
space; --repair deletes them. Dangling chunks (chunks whose vector is gone)
cannot be repaired automatically; delete and store the resource again.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkRepair, "repair", false, "delete orphaned vectors")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if err := requireService(resourceService != nil, "resource"); err != nil {
		return err
	}

	var (
		report *domain.ConsistencyReport
		err    error
	)
	if checkRepair {
		report, err = resourceService.Repair(cmd.Context())
	} else {
		report, err = resourceService.CheckConsistency(cmd.Context())
	}
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if !report.Consistent() && !checkRepair {
		return fmt.Errorf("%w: %d orphaned vector(s), %d dangling chunk(s)",
			domain.ErrConsistency, len(report.OrphanedVectors), len(report.DanglingChunks))
	}
	return nil
}

func printReport(cmd *cobra.Command, r *domain.ConsistencyReport) {
	cmd.Printf("Chunks:  %d\n", r.ChunkCount)
	cmd.Printf("Vectors: %d\n", r.VectorCount)
	if r.Consistent() {
		cmd.Println(styles.Success.Render("Store and index are consistent."))
		return
	}
	if len(r.OrphanedVectors) > 0 {
		label := "Orphaned vectors:"
		if checkRepair {
			label = "Removed orphaned vectors:"
		}
		cmd.Println(styles.Warning.Render(label), joinIDs(r.OrphanedVectors))
	}
	if len(r.DanglingChunks) > 0 {
		cmd.Println(styles.Error.Render("Dangling chunks:"), joinIDs(r.DanglingChunks))
	}
}
