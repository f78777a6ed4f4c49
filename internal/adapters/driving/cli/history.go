package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftaid-io/draftaid/internal/adapters/driven/storage/sqlite"
	"github.com/draftaid-io/draftaid/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past accept/dismiss decisions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of decisions")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := sqlite.NewStore(dataDir())
	if err != nil {
		return fmt.Errorf("opening decision store: %w", err)
	}
	defer store.Close()

	decisions, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("listing decisions: %w", err)
	}

	if len(decisions) == 0 {
		cmd.Println("No decisions recorded.")
		return nil
	}

	for _, d := range decisions {
		marker := "x"
		if d.Action == domain.DecisionAccepted {
			marker = "+"
		}
		cmd.Printf("%s %s [%s] %q\n", d.DecidedAt.Local().Format("2006-01-02 15:04"), marker, d.Category, d.Original)
		if d.Action == domain.DecisionAccepted && d.Replacement != "" {
			cmd.Printf("    -> %q\n", d.Replacement)
		}
	}
	return nil
}
