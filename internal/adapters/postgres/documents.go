package postgres

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/jackc/pgx/v5"

	"dealmatch/internal/domain"
	"dealmatch/internal/ports"
)

const documentColumns = `id, name, type, uploaded_at, status, summary, key_metrics, error, finished_at`

// Documents implements ports.DocumentRepository and ports.JobRepository.
type Documents struct{ db *DB }

// Insert stores doc and, when it still awaits analysis, queues its job in the
// same transaction.
func (s *Documents) Insert(ctx context.Context, doc domain.Document) error {
	return s.db.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (`+documentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, doc.ID, doc.Name, doc.Type, doc.UploadedAt, doc.Status, doc.Summary, metricsArg(doc.KeyMetrics), doc.Error, doc.FinishedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", doc.ID, ErrDuplicate)
		}
		if err != nil {
			return err
		}
		if doc.Status != domain.DocumentAnalyzing {
			return nil
		}
		_, err = tx.Exec(ctx, `INSERT INTO analysis_jobs (document_id) VALUES ($1)`, doc.ID)
		return err
	})
}

func (s *Documents) Get(ctx context.Context, id string) (domain.Document, error) {
	d, err := scanDocument(s.db.Pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return d, err
}

func (s *Documents) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update locks the row, applies fn and writes back the analysis outcome.
func (s *Documents) Update(ctx context.Context, id string, fn func(*domain.Document) error) (out domain.Document, err error) {
	err = s.db.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanDocument(tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		out = cur
		next := cur
		next.KeyMetrics = maps.Clone(cur.KeyMetrics)
		if err := fn(&next); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE documents SET status = $2, summary = $3, key_metrics = $4, error = $5, finished_at = $6
			WHERE id = $1
		`, id, next.Status, next.Summary, metricsArg(next.KeyMetrics), next.Error, next.FinishedAt); err != nil {
			return err
		}
		next.ID = cur.ID
		out = next
		return nil
	})
	return out, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (s *Documents) ClaimNext(ctx context.Context) (job ports.AnalysisJob, found bool, err error) {
	err = s.db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE analysis_jobs SET status = 'running', started_at = now(), attempts = attempts + 1
			WHERE id = (
				SELECT id FROM analysis_jobs
				WHERE status = 'queued'
				ORDER BY queued_at
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			RETURNING id, document_id, attempts
		`).Scan(&job.ID, &job.DocumentID, &job.Attempts)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return job, found, err
}

func (s *Documents) MarkCompleted(ctx context.Context, jobID string) error {
	return s.settle(ctx, jobID, "completed", nil)
}

func (s *Documents) MarkFailed(ctx context.Context, jobID string, reason string) error {
	return s.settle(ctx, jobID, "failed", &reason)
}

func (s *Documents) Requeue(ctx context.Context, jobID string) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE analysis_jobs SET status = 'queued', started_at = NULL WHERE id = $1 AND status = 'running'
	`, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("running job %s: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

func (s *Documents) settle(ctx context.Context, jobID, status string, reason *string) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE analysis_jobs SET status = $2, reason = $3, finished_at = now() WHERE id = $1
	`, jobID, status, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

// StartJobForDocument marks the queued job of a specific document as running
// and returns its id.
func (s *Documents) StartJobForDocument(ctx context.Context, documentID string) (jobID string, err error) {
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE analysis_jobs SET status = 'running', started_at = now(), attempts = attempts + 1
		WHERE id = (
			SELECT id FROM analysis_jobs
			WHERE document_id = $1 AND status = 'queued'
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id
	`, documentID).Scan(&jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("queued job for document %s: %w", documentID, domain.ErrNotFound)
	}
	return jobID, err
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.Name, &d.Type, &d.UploadedAt, &d.Status, &d.Summary, &d.KeyMetrics, &d.Error, &d.FinishedAt)
	return d, err
}

// metricsArg keeps an absent metrics map as SQL NULL.
func metricsArg(m map[string]string) any {
	if m == nil {
		return nil
	}
	return m
}
