package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestScope string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Chunk a text file and store it as searchable knowledge",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestScope, "scope", "", "scope reference (empty for global knowledge)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.Ingest.IngestDocument(ctx, ingestScope, filepath.Base(args[0]), string(content))
	if err != nil {
		return fmt.Errorf("ingesting document: %w", err)
	}

	fmt.Printf("Stored %s as %d chunks (document %s)\n", doc.Filename, doc.ChunkCount, doc.ID)
	return nil
}
