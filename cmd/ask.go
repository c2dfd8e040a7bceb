package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askScope string

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask a question answered from recorded knowledge",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askScope, "scope", "", "scope reference (empty for global knowledge)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.Composer.Answer(ctx, nil, strings.Join(args, " "), askScope)
	if err != nil {
		return fmt.Errorf("composing answer: %w", err)
	}

	fmt.Println(answer)
	return nil
}
