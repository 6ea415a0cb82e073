package analysisrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dealmatch/internal/documents"
	"dealmatch/internal/domain"
	"dealmatch/internal/logging"
	"dealmatch/internal/ports"
)

// Analyzer performs the analysis for one document. It stands in for an
// external inference service.
type Analyzer interface {
	Analyze(ctx context.Context, doc domain.Document) (Report, error)
}

// Report is what a successful analysis yields.
type Report struct {
	Summary    string
	KeyMetrics map[string]string
}

// SimulatedAnalyzer waits Delay and reports a canned result.
type SimulatedAnalyzer struct {
	Delay time.Duration
}

func (s SimulatedAnalyzer) Analyze(ctx context.Context, _ domain.Document) (Report, error) {
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case <-time.After(s.Delay):
	}
	return Report{
		Summary:    "Document analyzed successfully. Key financial metrics extracted.",
		KeyMetrics: map[string]string{"Status": "Processed", "Confidence": "95%"},
	}, nil
}

// Options tune the runner.
type Options struct {
	Concurrency  int
	PollInterval time.Duration
	// Timeout bounds a single analysis; when it elapses the document is
	// failed. Zero disables the limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Runner claims analysis jobs and settles their documents through the
// pipeline, so every document gets exactly one terminal transition.
type Runner struct {
	jobs     ports.JobRepository
	pipeline *documents.Pipeline
	analyzer Analyzer
	opts     Options
	log      *slog.Logger
}

func New(jobs ports.JobRepository, pipeline *documents.Pipeline, analyzer Analyzer, opts Options) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{jobs: jobs, pipeline: pipeline, analyzer: analyzer, opts: opts, log: logger}
}

// Run starts worker goroutines that claim jobs and process them. It blocks
// until ctx is cancelled and every worker has returned.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.Concurrency < 1 {
		return nil
	}
	jobsCh := make(chan ports.AnalysisJob, r.opts.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for job := range jobsCh {
				if err := r.process(ctx, job); err != nil {
					r.log.Warn("analysis job failed", "worker", idx, "job", job.ID, "document", job.DocumentID, "error", err)
				}
			}
		}(i)
	}

	// dispatcher loop
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	defer wg.Wait()
	defer close(jobsCh)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				job, found, err := r.jobs.ClaimNext(ctx)
				if err != nil {
					if ctx.Err() == nil {
						r.log.Error("analysis job claim failed", "error", err)
					}
					break
				}
				if !found {
					break
				}
				select {
				case jobsCh <- job:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// ProcessInline claims and processes the job of a specific document
// synchronously, using the same path as the background workers. It returns
// the settled document, whether analysis succeeded or failed.
//
// Once claimed, the job runs to settlement even if ctx ends first; in that
// case the document is returned as it stands, together with ctx.Err().
func (r *Runner) ProcessInline(ctx context.Context, documentID string) (domain.Document, error) {
	jobID, err := r.jobs.StartJobForDocument(ctx, documentID)
	if err != nil {
		return domain.Document{}, err
	}
	detached := context.WithoutCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- r.process(detached, ports.AnalysisJob{ID: jobID, DocumentID: documentID})
	}()

	var perr error
	select {
	case perr = <-done:
	case <-ctx.Done():
		r.log.Debug("inline analysis continues in background", "document", documentID, "job", jobID)
		doc, err := r.pipeline.Get(detached, documentID)
		if err != nil {
			return domain.Document{}, err
		}
		return doc, ctx.Err()
	}
	doc, err := r.pipeline.Get(detached, documentID)
	if err != nil {
		return domain.Document{}, err
	}
	// A failed analysis still settles the document; report it, not the error.
	if perr != nil && !doc.Status.Terminal() {
		return doc, perr
	}
	return doc, nil
}

func (r *Runner) process(ctx context.Context, job ports.AnalysisJob) error {
	doc, err := r.pipeline.Get(ctx, job.DocumentID)
	if err != nil {
		_ = r.jobs.MarkFailed(ctx, job.ID, err.Error())
		return err
	}

	actx, cancel := ctx, context.CancelFunc(func() {})
	if r.opts.Timeout > 0 {
		actx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
	}
	report, err := r.analyzer.Analyze(actx, doc)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			// Shutting down: put the job back so a later claim picks it up.
			rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer rcancel()
			if rerr := r.jobs.Requeue(rctx, job.ID); rerr != nil {
				r.log.Error("requeue analysis job failed", "job", job.ID, "document", job.DocumentID, "error", rerr)
			}
			return ctx.Err()
		}
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("analysis timed out after %s", r.opts.Timeout)
		}
		if _, ferr := r.pipeline.FailAnalysis(ctx, doc.ID, reason); ferr != nil && !r.ignorable(ferr, doc.ID) {
			return ferr
		}
		if merr := r.jobs.MarkFailed(ctx, job.ID, reason); merr != nil {
			return merr
		}
		return err
	}

	if _, err := r.pipeline.CompleteAnalysis(ctx, doc.ID, report.Summary, report.KeyMetrics); err != nil && !r.ignorable(err, doc.ID) {
		_ = r.jobs.MarkFailed(ctx, job.ID, err.Error())
		return err
	}
	return r.jobs.MarkCompleted(ctx, job.ID)
}

// ignorable reports whether err is a late result for a document that already
// reached a terminal state, e.g. failed by an external timeout.
func (r *Runner) ignorable(err error, documentID string) bool {
	if errors.Is(err, domain.ErrInvalidTransition) {
		r.log.Debug("ignoring late analysis result", "document", documentID, "error", err)
		return true
	}
	return false
}
