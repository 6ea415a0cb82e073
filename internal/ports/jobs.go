package ports

import "context"

type AnalysisJob struct {
	ID         string
	DocumentID string
	Attempts   int
}

// JobRepository supports claiming and settling document analysis jobs.
type JobRepository interface {
	ClaimNext(ctx context.Context) (job AnalysisJob, found bool, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	// Requeue returns a running job to the queue.
	Requeue(ctx context.Context, jobID string) error
	StartJobForDocument(ctx context.Context, documentID string) (jobID string, err error)
}
