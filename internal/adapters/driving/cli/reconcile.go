package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/all-black-493/supportly/internal/core/domain"
)

var (
	reconcileNamespace string
	reconcileAll       bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove indexed chunks that have no entry",
	Long: `Removes chunk sets left behind when ingestion stopped between indexing
and committing the entry, for example after a crash.

Run it while no server is ingesting into the same data directory.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileNamespace, "namespace", "n", "", "organisation namespace")
	reconcileCmd.Flags().BoolVar(&reconcileAll, "all", false, "reconcile every namespace")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if reconcileAll == (reconcileNamespace != "") {
		return errors.New("pass exactly one of --namespace or --all")
	}

	a, err := openApp(cmdContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	namespaces := []domain.Namespace{domain.Namespace(reconcileNamespace)}
	if reconcileAll {
		namespaces = a.index.Namespaces()
	}

	total := 0
	for _, ns := range namespaces {
		cleaned, err := a.lifecycle.Reconcile(cmdContext(cmd), ns)
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", ns, err)
		}
		if cleaned > 0 {
			cmd.Printf("  %s: removed %d orphaned entries\n", ns, cleaned)
		}
		total += cleaned
	}

	cmd.Printf("Reconciled %d namespaces, removed %d orphaned entries.\n", len(namespaces), total)
	return nil
}
