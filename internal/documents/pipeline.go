// Package documents tracks uploaded files through analysis. Upload registers
// a document immediately; CompleteAnalysis or FailAnalysis is delivered later
// by whatever performs the analysis.
package documents

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
)

// Store is the owning Document collection. Update must apply fn and persist
// the result atomically with respect to other Updates of the same id; if fn
// returns an error nothing is written.
type Store interface {
	Insert(ctx context.Context, doc domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Update(ctx context.Context, id string, fn func(*domain.Document) error) (domain.Document, error)
}

// Pipeline guards document state transitions.
type Pipeline struct {
	store Store
	ids   identity.Source
}

func New(store Store, ids identity.Source) *Pipeline {
	if ids == nil {
		ids = identity.System{}
	}
	return &Pipeline{store: store, ids: ids}
}

// Upload registers a new document in status analyzing. It never waits for
// analysis.
func (p *Pipeline) Upload(ctx context.Context, name, typeTag string) (domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Document{}, fmt.Errorf("%w: document name is required", domain.ErrValidation)
	}
	doc := domain.Document{
		ID:         p.ids.NewID(),
		Name:       name,
		Type:       strings.TrimSpace(typeTag),
		UploadedAt: p.ids.Now(),
		Status:     domain.DocumentAnalyzing,
	}
	if err := p.store.Insert(ctx, doc); err != nil {
		return domain.Document{}, fmt.Errorf("documents: register upload: %w", err)
	}
	return doc, nil
}

// CompleteAnalysis moves an analyzing document to analyzed with its summary
// and metrics.
func (p *Pipeline) CompleteAnalysis(ctx context.Context, id, summary string, metrics map[string]string) (domain.Document, error) {
	now := p.ids.Now()
	return p.store.Update(ctx, id, func(d *domain.Document) error {
		if err := guardAnalyzing(d); err != nil {
			return err
		}
		d.Status = domain.DocumentAnalyzed
		d.Summary = &summary
		d.KeyMetrics = maps.Clone(metrics)
		if d.KeyMetrics == nil {
			d.KeyMetrics = map[string]string{}
		}
		d.Error = nil
		d.FinishedAt = &now
		return nil
	})
}

// FailAnalysis moves an analyzing document to error, recording reason.
func (p *Pipeline) FailAnalysis(ctx context.Context, id, reason string) (domain.Document, error) {
	now := p.ids.Now()
	return p.store.Update(ctx, id, func(d *domain.Document) error {
		if err := guardAnalyzing(d); err != nil {
			return err
		}
		d.Status = domain.DocumentError
		d.Summary = nil
		d.KeyMetrics = nil
		d.Error = &reason
		d.FinishedAt = &now
		return nil
	})
}

func (p *Pipeline) Get(ctx context.Context, id string) (domain.Document, error) {
	return p.store.Get(ctx, id)
}

func (p *Pipeline) List(ctx context.Context) ([]domain.Document, error) {
	return p.store.List(ctx)
}

func guardAnalyzing(d *domain.Document) error {
	if d.Status != domain.DocumentAnalyzing {
		return fmt.Errorf("%w: document %s is %s", domain.ErrInvalidTransition, d.ID, d.Status)
	}
	return nil
}
