package analysis

import (
	"context"

	"dealmatch/internal/documents"
	"dealmatch/internal/domain"
	analysisrunner "dealmatch/internal/workers/analysisrunner"
)

// Service exposes the document pipeline together with inline processing.
type Service struct {
	pipeline *documents.Pipeline
	runner   *analysisrunner.Runner
}

func New(pipeline *documents.Pipeline, runner *analysisrunner.Runner) *Service {
	return &Service{pipeline: pipeline, runner: runner}
}

func (s *Service) Upload(ctx context.Context, name, typeTag string) (domain.Document, error) {
	return s.pipeline.Upload(ctx, name, typeTag)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	return s.pipeline.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Document, error) {
	return s.pipeline.List(ctx)
}

func (s *Service) Complete(ctx context.Context, id, summary string, metrics map[string]string) (domain.Document, error) {
	return s.pipeline.CompleteAnalysis(ctx, id, summary, metrics)
}

func (s *Service) Fail(ctx context.Context, id, reason string) (domain.Document, error) {
	return s.pipeline.FailAnalysis(ctx, id, reason)
}

func (s *Service) Process(ctx context.Context, id string) (domain.Document, error) {
	return s.runner.ProcessInline(ctx, id)
}
