package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dealmatch/internal/domain"
)

var ErrDuplicate = errors.New("duplicate id")

const uniqueViolation = "23505"

const profileColumns = `id, role, name, email, company, location, industry, budget, revenue,
	employees, description, verified, interests, attributes, last_active, created_at`

// Profiles implements ports.ProfileRepository.
type Profiles struct{ db *DB }

func (s *Profiles) Create(ctx context.Context, p domain.Profile) error {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, p.ID, p.Role, p.Name, p.Email, p.Company, p.Location, p.Industry, p.Budget, p.Revenue,
		p.Employees, p.Description, p.Verified, interests, attrs, p.LastActive, p.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicate)
	}
	return err
}

func (s *Profiles) Get(ctx context.Context, id string) (domain.Profile, error) {
	row := s.db.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return p, err
}

func (s *Profiles) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Profiles) TouchLastActive(ctx context.Context, id, marker string) error {
	tag, err := s.db.Pool.Exec(ctx, `UPDATE profiles SET last_active = $2 WHERE id = $1`, id, marker)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Role, &p.Name, &p.Email, &p.Company, &p.Location, &p.Industry,
		&p.Budget, &p.Revenue, &p.Employees, &p.Description, &p.Verified, &p.Interests,
		&p.Attributes, &p.LastActive, &p.CreatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
