// Package store persists decks, cards, the review log, and the adopted
// weight vector in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/revisehq/revise/srs"
)

// ErrNotFound is returned when a deck or card does not exist.
var ErrNotFound = errors.New("store: not found")

// Deck groups cards under a name.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Card is a stored card: content fields plus the scheduling state.
type Card struct {
	srs.Card
	DeckID    int64     `json:"deck_id"`
	Deck      string    `json:"deck"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a SQLite-backed store.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
}

// New opens or creates a SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decks (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS cards (
		id             TEXT PRIMARY KEY,
		deck_id        INTEGER NOT NULL REFERENCES decks(id),
		title          TEXT NOT NULL,
		body           TEXT NOT NULL,
		state          TEXT NOT NULL,
		prior_state    TEXT,
		step           INTEGER,
		stability      REAL,
		difficulty     REAL,
		due_at         TEXT NOT NULL,
		last_review_at TEXT,
		lapses         INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id);
	CREATE INDEX IF NOT EXISTS idx_cards_due ON cards(due_at);

	CREATE TABLE IF NOT EXISTS revlog (
		id                       TEXT PRIMARY KEY,
		item_id                  TEXT NOT NULL,
		rating                   TEXT NOT NULL,
		reviewed_at              TEXT NOT NULL,
		elapsed_days             REAL NOT NULL,
		stability_before         REAL,
		stability_after          REAL NOT NULL,
		difficulty_before        REAL,
		difficulty_after         REAL NOT NULL,
		predicted_retrievability REAL NOT NULL,
		review_duration          INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_revlog_item ON revlog(item_id, reviewed_at);

	CREATE TABLE IF NOT EXISTS params (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		weights    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddDeck creates a deck if it does not exist and returns it.
func (s *Store) AddDeck(ctx context.Context, name string) (Deck, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO decks (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return Deck{}, fmt.Errorf("add deck: %w", err)
	}
	var d Deck
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM decks WHERE name = ?`, name).Scan(&d.ID, &d.Name)
	if err != nil {
		return Deck{}, fmt.Errorf("add deck: %w", err)
	}
	return d, nil
}

// ListDecks returns all decks ordered by name.
func (s *Store) ListDecks(ctx context.Context) ([]Deck, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM decks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("list decks: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// RemoveOrphanDecks deletes decks that no longer hold any card.
func (s *Store) RemoveOrphanDecks(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM decks WHERE id NOT IN (SELECT DISTINCT deck_id FROM cards)`)
	if err != nil {
		return fmt.Errorf("remove orphan decks: %w", err)
	}
	return nil
}
