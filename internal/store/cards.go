package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/revisehq/revise/srs"
)

const timeFormat = time.RFC3339Nano

// AddCard creates a card in the named deck (creating the deck if needed)
// and returns it with a fresh New scheduling state.
func (s *Store) AddCard(ctx context.Context, deckName, title, body string) (Card, error) {
	deck, err := s.AddDeck(ctx, deckName)
	if err != nil {
		return Card{}, err
	}

	now := time.Now()
	sched := srs.NewCard(s.newID())
	sched.Due = now

	c := Card{
		Card:      sched,
		DeckID:    deck.ID,
		Deck:      deck.Name,
		Title:     title,
		Body:      body,
		CreatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (id, deck_id, title, body, state, prior_state, step,
			stability, difficulty, due_at, last_review_at, lapses, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DeckID, c.Title, c.Body,
		c.State.String(), nullState(c.PriorState), nullInt(c.Step),
		nullFloat(c.Stability), nullFloat(c.Difficulty),
		c.Due.UTC().Format(timeFormat), nullTime(c.LastReview),
		c.Lapses, c.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return Card{}, fmt.Errorf("add card: %w", err)
	}
	return c, nil
}

const cardColumns = `c.id, c.deck_id, d.name, c.title, c.body, c.state,
	c.prior_state, c.step, c.stability, c.difficulty, c.due_at,
	c.last_review_at, c.lapses, c.created_at`

// GetCard returns the card with the given id, or ErrNotFound.
func (s *Store) GetCard(ctx context.Context, id string) (Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards c JOIN decks d ON d.id = c.deck_id
		WHERE c.id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, fmt.Errorf("%w: card %q", ErrNotFound, id)
	}
	if err != nil {
		return Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

// ListFilter narrows ListCards results. The zero value lists every card.
type ListFilter struct {
	Deck          string    // non-empty → only this deck
	DueBefore     time.Time // non-zero → only cards due at or before this time, excluding suspended
	SuspendedOnly bool
}

// ListCards returns cards matching the filter, ordered by due time.
func (s *Store) ListCards(ctx context.Context, f ListFilter) ([]Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards c JOIN decks d ON d.id = c.deck_id
		WHERE 1=1`
	var args []any

	if f.Deck != "" {
		query += ` AND d.name = ?`
		args = append(args, f.Deck)
	}
	if f.SuspendedOnly {
		query += ` AND c.state = ?`
		args = append(args, srs.Suspended.String())
	} else if !f.DueBefore.IsZero() {
		query += ` AND c.state != ? AND c.due_at <= ?`
		args = append(args, srs.Suspended.String(), f.DueBefore.UTC().Format(timeFormat))
	}
	query += ` ORDER BY c.due_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// SaveCard persists the scheduling state of a card after a review or a
// suspend toggle. Content fields are not touched.
func (s *Store) SaveCard(ctx context.Context, c srs.Card) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cards SET state = ?, prior_state = ?, step = ?, stability = ?,
			difficulty = ?, due_at = ?, last_review_at = ?, lapses = ?
		WHERE id = ?`,
		c.State.String(), nullState(c.PriorState), nullInt(c.Step),
		nullFloat(c.Stability), nullFloat(c.Difficulty),
		c.Due.UTC().Format(timeFormat), nullTime(c.LastReview),
		c.Lapses, c.ID)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: card %q", ErrNotFound, c.ID)
	}
	return nil
}

// UpdateCardDetails replaces a card's title, body, and deck.
func (s *Store) UpdateCardDetails(ctx context.Context, id, deckName, title, body string) error {
	deck, err := s.AddDeck(ctx, deckName)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards SET deck_id = ?, title = ?, body = ? WHERE id = ?`,
		deck.ID, title, body, id)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: card %q", ErrNotFound, id)
	}
	return nil
}

// RemoveCard deletes a card. Its review log entries are kept.
func (s *Store) RemoveCard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: card %q", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (Card, error) {
	var (
		c          Card
		state      string
		priorState sql.NullString
		step       sql.NullInt64
		stability  sql.NullFloat64
		difficulty sql.NullFloat64
		dueAt      string
		lastReview sql.NullString
		createdAt  string
	)
	err := row.Scan(&c.ID, &c.DeckID, &c.Deck, &c.Title, &c.Body, &state,
		&priorState, &step, &stability, &difficulty, &dueAt, &lastReview,
		&c.Lapses, &createdAt)
	if err != nil {
		return Card{}, err
	}

	if err := c.State.UnmarshalText([]byte(state)); err != nil {
		return Card{}, err
	}
	if priorState.Valid {
		if err := c.PriorState.UnmarshalText([]byte(priorState.String)); err != nil {
			return Card{}, err
		}
	}
	if step.Valid {
		v := int(step.Int64)
		c.Step = &v
	}
	if stability.Valid {
		v := stability.Float64
		c.Stability = &v
	}
	if difficulty.Valid {
		v := difficulty.Float64
		c.Difficulty = &v
	}
	if c.Due, err = time.Parse(timeFormat, dueAt); err != nil {
		return Card{}, err
	}
	if lastReview.Valid {
		t, err := time.Parse(timeFormat, lastReview.String)
		if err != nil {
			return Card{}, err
		}
		c.LastReview = &t
	}
	if c.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return Card{}, err
	}
	return c, nil
}

func nullState(s srs.State) any {
	if s == 0 {
		return nil
	}
	return s.String()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}
