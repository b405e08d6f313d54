package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise/srs"
)

func useTestDB(t *testing.T) {
	t.Helper()
	old := dbPath
	dbPath = filepath.Join(t.TempDir(), "revise.db")
	t.Cleanup(func() { dbPath = old })
}

// runCommand executes the root command with args and returns its stdout.
func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	RootCmd.SetArgs(args)
	execErr := RootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	require.NoError(t, execErr)
	return buf.String()
}

func TestEditCommand(t *testing.T) {
	useTestDB(t)
	ctx := context.Background()

	st, err := openStore()
	require.NoError(t, err)
	c, err := st.AddCard(ctx, "old-deck", "old title", "old body")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out := runCommand(t, "edit", c.ID, "--title", "new title", "--deck", "new-deck")
	assert.Contains(t, out, "new title")

	st, err = openStore()
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetCard(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "new-deck", got.Deck)
	assert.Equal(t, "old body", got.Body, "flags not passed keep the current value")

	// The now-empty old deck is garbage-collected.
	decks, err := st.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "new-deck", decks[0].Name)
}

func TestLogCommand(t *testing.T) {
	useTestDB(t)
	ctx := context.Background()

	st, err := openStore()
	require.NoError(t, err)
	c, err := st.AddCard(ctx, "default", "t", "b")
	require.NoError(t, err)

	reviewedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sAfter := 3.7145
	require.NoError(t, st.AppendReview(ctx, srs.ReviewLog{
		ItemID: c.ID, Rating: srs.Good, ReviewedAt: reviewedAt,
		StabilityAfter: sAfter, DifficultyAfter: 2.1, PredictedRetrievability: 1,
	}))
	require.NoError(t, st.AppendReview(ctx, srs.ReviewLog{
		ItemID: c.ID, Rating: srs.Again, ReviewedAt: reviewedAt.Add(4 * 24 * time.Hour),
		ElapsedDays: 4, StabilityBefore: &sAfter, StabilityAfter: 1.2,
		DifficultyAfter: 2.5, PredictedRetrievability: 0.89,
	}))
	require.NoError(t, st.Close())

	out := runCommand(t, "log", c.ID)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, "one line per review, chronological")
	assert.Contains(t, lines[0], "good")
	assert.Contains(t, lines[1], "again")
	assert.Contains(t, lines[1], "elapsed 4.0d")
}
