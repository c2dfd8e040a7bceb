package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vyronlabs/agencyos/internal/retrieve"
)

var (
	searchScope string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recorded knowledge by semantic similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchScope, "scope", "", "scope reference (empty for global knowledge)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", retrieve.DefaultK, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	results, err := a.Engine.Retrieve(ctx, query, searchScope, searchLimit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching knowledge recorded.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %.3f [%s] %s\n", i+1, r.Similarity, r.Unit.SourceKind, r.Unit.Text)
	}
	return nil
}
