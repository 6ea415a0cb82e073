package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dealmatch/internal/domain"
)

const matchSelect = `
	SELECT m.id, m.seq, m.viewer_id, m.status, m.created_at, m.last_message, m.last_message_at,
		p.id, p.role, p.name, p.email, p.company, p.location, p.industry, p.budget, p.revenue,
		p.employees, p.description, p.verified, p.interests, p.attributes, p.last_active, p.created_at
	FROM matches m
	JOIN profiles p ON p.id = m.profile_id`

// Matches implements ports.MatchRepository. The matched profile is read
// through a join, so it reflects the profile's current state.
type Matches struct{ db *DB }

// Append inserts m. A repeated viewer/profile pair returns the stored match.
func (s *Matches) Append(ctx context.Context, m domain.Match) (domain.Match, error) {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO matches (id, viewer_id, profile_id, status, created_at, last_message, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (viewer_id, profile_id) DO NOTHING
	`, m.ID, m.ViewerID, m.Profile.ID, m.Status, m.CreatedAt, m.LastMessage, m.LastMessageAt)
	if isUniqueViolation(err) {
		return domain.Match{}, fmt.Errorf("match %s: %w", m.ID, ErrDuplicate)
	}
	if err != nil {
		return domain.Match{}, err
	}
	row := s.db.Pool.QueryRow(ctx, matchSelect+` WHERE m.viewer_id = $1 AND m.profile_id = $2`, m.ViewerID, m.Profile.ID)
	return scanMatch(row)
}

func (s *Matches) Get(ctx context.Context, id string) (domain.Match, error) {
	m, err := scanMatch(s.db.Pool.QueryRow(ctx, matchSelect+` WHERE m.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Match{}, fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
	}
	return m, err
}

func (s *Matches) ListByViewer(ctx context.Context, viewerID string) ([]domain.Match, error) {
	rows, err := s.db.Pool.Query(ctx, matchSelect+` WHERE m.viewer_id = $1 ORDER BY m.seq`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update locks the row, applies fn and writes back the mutable columns.
func (s *Matches) Update(ctx context.Context, id string, fn func(*domain.Match) error) (out domain.Match, err error) {
	err = s.db.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanMatch(tx.QueryRow(ctx, matchSelect+` WHERE m.id = $1 FOR UPDATE OF m`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		out = cur
		next := cur
		if err := fn(&next); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE matches SET status = $2, last_message = $3, last_message_at = $4 WHERE id = $1
		`, id, next.Status, next.LastMessage, next.LastMessageAt); err != nil {
			return err
		}
		next.ID, next.Seq, next.ViewerID = cur.ID, cur.Seq, cur.ViewerID
		out = next
		return nil
	})
	return out, err
}

func scanMatch(row pgx.Row) (domain.Match, error) {
	var m domain.Match
	p := &m.Profile
	err := row.Scan(&m.ID, &m.Seq, &m.ViewerID, &m.Status, &m.CreatedAt, &m.LastMessage, &m.LastMessageAt,
		&p.ID, &p.Role, &p.Name, &p.Email, &p.Company, &p.Location, &p.Industry, &p.Budget, &p.Revenue,
		&p.Employees, &p.Description, &p.Verified, &p.Interests, &p.Attributes, &p.LastActive, &p.CreatedAt)
	return m, err
}
