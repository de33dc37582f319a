package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all logged builds",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	store := e.tracker.Store()

	if !clearYes {
		fmt.Fprintf(out, "Delete all builds in %s? [y/N] ", store.Path())
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("error clearing history: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render("✓ History cleared"))
	return nil
}
