package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/revisehq/revise/srs"
)

// AppendReview appends a review log entry. Entries are never updated.
func (s *Store) AppendReview(ctx context.Context, log srs.ReviewLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revlog (id, item_id, rating, reviewed_at, elapsed_days,
			stability_before, stability_after, difficulty_before,
			difficulty_after, predicted_retrievability, review_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.newID(), log.ItemID, log.Rating.String(),
		log.ReviewedAt.UTC().Format(timeFormat), log.ElapsedDays,
		nullFloat(log.StabilityBefore), log.StabilityAfter,
		nullFloat(log.DifficultyBefore), log.DifficultyAfter,
		log.PredictedRetrievability, nullInt(log.ReviewDuration))
	if err != nil {
		return fmt.Errorf("append review: %w", err)
	}
	return nil
}

// ListReviews returns the review log for one item in chronological order.
func (s *Store) ListReviews(ctx context.Context, itemID string) ([]srs.ReviewLog, error) {
	return s.queryReviews(ctx,
		`SELECT item_id, rating, reviewed_at, elapsed_days, stability_before,
			stability_after, difficulty_before, difficulty_after,
			predicted_retrievability, review_duration
		FROM revlog WHERE item_id = ? ORDER BY reviewed_at`, itemID)
}

// AllReviews returns the full review log in chronological order. This is
// the optimizer's input.
func (s *Store) AllReviews(ctx context.Context) ([]srs.ReviewLog, error) {
	return s.queryReviews(ctx,
		`SELECT item_id, rating, reviewed_at, elapsed_days, stability_before,
			stability_after, difficulty_before, difficulty_after,
			predicted_retrievability, review_duration
		FROM revlog ORDER BY reviewed_at`)
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...any) ([]srs.ReviewLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var logs []srs.ReviewLog
	for rows.Next() {
		var (
			log        srs.ReviewLog
			rating     string
			reviewedAt string
			sBefore    sql.NullFloat64
			dBefore    sql.NullFloat64
			duration   sql.NullInt64
		)
		err := rows.Scan(&log.ItemID, &rating, &reviewedAt, &log.ElapsedDays,
			&sBefore, &log.StabilityAfter, &dBefore, &log.DifficultyAfter,
			&log.PredictedRetrievability, &duration)
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		if err := log.Rating.UnmarshalText([]byte(rating)); err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		if log.ReviewedAt, err = time.Parse(timeFormat, reviewedAt); err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		if sBefore.Valid {
			v := sBefore.Float64
			log.StabilityBefore = &v
		}
		if dBefore.Valid {
			v := dBefore.Float64
			log.DifficultyBefore = &v
		}
		if duration.Valid {
			v := int(duration.Int64)
			log.ReviewDuration = &v
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// LoadParameters returns the persisted weight vector, or nil when none has
// been saved (or the stored row fails validation) — the caller falls back
// to srs.DefaultParameters.
func (s *Store) LoadParameters(ctx context.Context) (*srs.Parameters, error) {
	var weights string
	err := s.db.QueryRowContext(ctx,
		`SELECT weights FROM params WHERE id = 1`).Scan(&weights)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}

	var p srs.Parameters
	if err := json.Unmarshal([]byte(weights), &p); err != nil {
		return nil, nil
	}
	if err := p.Validate(); err != nil {
		return nil, nil
	}
	return &p, nil
}

// SaveParameters persists the adopted weight vector, replacing any
// previous one.
func (s *Store) SaveParameters(ctx context.Context, p srs.Parameters) error {
	weights, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("save parameters: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO params (id, weights, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET weights = excluded.weights,
			updated_at = excluded.updated_at`,
		string(weights), time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save parameters: %w", err)
	}
	return nil
}
