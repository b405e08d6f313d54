// Package cli implements the revise CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/revisehq/revise/internal/store"
	"github.com/revisehq/revise/srs"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "revise",
	Short: "Spaced repetition from the command line",
	Long: "revise schedules flashcard reviews with an FSRS-family memory model.\n" +
		"Cards, decks, and the review log live in a local SQLite database.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $REVISE_DB or ~/.revise/revise.db)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("REVISE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".revise", "revise.db")
}

func openStore() (*store.Store, error) {
	return store.New(getDBPath())
}

// newScheduler builds a scheduler with the persisted weight vector, falling
// back to the shipped defaults when none has been saved.
func newScheduler(cmd *cobra.Command, st *store.Store) (*srs.Scheduler, error) {
	cfg := srs.SchedulerConfig{}
	params, err := st.LoadParameters(cmd.Context())
	if err != nil {
		return nil, err
	}
	if params != nil {
		cfg.Parameters = *params
	}
	return srs.NewScheduler(cfg)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
