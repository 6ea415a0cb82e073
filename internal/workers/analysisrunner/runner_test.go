package analysisrunner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dealmatch/internal/adapters/memory"
	"dealmatch/internal/documents"
	"dealmatch/internal/domain"
)

type analyzerFunc func(ctx context.Context, doc domain.Document) (Report, error)

func (f analyzerFunc) Analyze(ctx context.Context, doc domain.Document) (Report, error) {
	return f(ctx, doc)
}

func waitForStatus(t *testing.T, p *documents.Pipeline, id string, want domain.DocumentStatus) domain.Document {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := p.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if doc.Status == want {
			return doc
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("document %s never reached %s", id, want)
	return domain.Document{}
}

func startRunner(t *testing.T, store *memory.Documents, p *documents.Pipeline, a Analyzer, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	r := New(store, p, a, Options{Concurrency: 2, PollInterval: 5 * time.Millisecond, Timeout: timeout})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestRunnerCompletesUploads(t *testing.T) {
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	startRunner(t, store, p, SimulatedAnalyzer{Delay: time.Millisecond}, time.Second)

	doc, err := p.Upload(context.Background(), "Balance Sheet Q4.pdf", "financial")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	got := waitForStatus(t, p, doc.ID, domain.DocumentAnalyzed)
	if got.Summary == nil || got.KeyMetrics["Confidence"] != "95%" {
		t.Fatalf("unexpected analysis result: %+v", got)
	}
}

func TestRunnerFailsOnAnalyzerError(t *testing.T) {
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	startRunner(t, store, p, analyzerFunc(func(context.Context, domain.Document) (Report, error) {
		return Report{}, errors.New("unreadable")
	}), time.Second)

	doc, _ := p.Upload(context.Background(), "scan.tiff", "financial")
	got := waitForStatus(t, p, doc.ID, domain.DocumentError)
	if got.Error == nil || *got.Error != "unreadable" {
		t.Fatalf("expected failure reason, got %+v", got.Error)
	}
}

func TestRunnerFailsOnTimeout(t *testing.T) {
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	startRunner(t, store, p, analyzerFunc(func(ctx context.Context, _ domain.Document) (Report, error) {
		<-ctx.Done()
		return Report{}, ctx.Err()
	}), 20*time.Millisecond)

	doc, _ := p.Upload(context.Background(), "huge.pdf", "financial")
	got := waitForStatus(t, p, doc.ID, domain.DocumentError)
	if got.Error == nil || !strings.Contains(*got.Error, "timed out") {
		t.Fatalf("expected timeout reason, got %+v", got.Error)
	}
}

func TestProcessInlineIgnoresLateCompletion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	doc, _ := p.Upload(ctx, "late.pdf", "financial")

	r := New(store, p, analyzerFunc(func(ctx context.Context, d domain.Document) (Report, error) {
		// The host gives up on the document while analysis is in flight.
		if _, err := p.FailAnalysis(ctx, d.ID, "cancelled by host"); err != nil {
			t.Errorf("external fail: %v", err)
		}
		return Report{Summary: "too late"}, nil
	}), Options{})

	got, err := r.ProcessInline(ctx, doc.ID)
	if err != nil {
		t.Fatalf("process inline: %v", err)
	}
	if got.Status != domain.DocumentError || got.Summary != nil {
		t.Fatalf("late completion was applied: %+v", got)
	}
	if store.Pending() != 0 {
		t.Fatalf("job left unsettled")
	}
}

func TestProcessInlineRequiresQueuedJob(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	r := New(store, p, SimulatedAnalyzer{}, Options{})
	doc, _ := p.Upload(ctx, "once.pdf", "financial")
	if _, err := r.ProcessInline(ctx, doc.ID); err != nil {
		t.Fatalf("first inline run: %v", err)
	}
	if _, err := r.ProcessInline(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for already processed document, got %v", err)
	}
}

func waitForSettledJobs(t *testing.T, store *memory.Documents) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.Pending() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d jobs left unsettled", store.Pending())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProcessInlineSettlesAfterCallerGivesUp(t *testing.T) {
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	r := New(store, p, SimulatedAnalyzer{Delay: 200 * time.Millisecond}, Options{Timeout: time.Second})
	doc, _ := p.Upload(context.Background(), "slow.pdf", "financial")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	got, err := r.ProcessInline(ctx, doc.ID)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if got.ID != doc.ID || got.Status != domain.DocumentAnalyzing {
		t.Fatalf("expected the in-flight document, got %+v", got)
	}

	waitForStatus(t, p, doc.ID, domain.DocumentAnalyzed)
	waitForSettledJobs(t, store)
}

func TestRunnerRequeuesJobOnShutdown(t *testing.T) {
	store := memory.NewDocuments()
	p := documents.New(store, nil)
	started := make(chan struct{})
	r := New(store, p, analyzerFunc(func(ctx context.Context, _ domain.Document) (Report, error) {
		close(started)
		<-ctx.Done()
		return Report{}, ctx.Err()
	}), Options{Concurrency: 1, PollInterval: 5 * time.Millisecond})
	doc, _ := p.Upload(context.Background(), "interrupted.pdf", "financial")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	<-started
	cancel()
	<-done

	got, _ := p.Get(context.Background(), doc.ID)
	if got.Status != domain.DocumentAnalyzing {
		t.Fatalf("shutdown must not settle the document, got %s", got.Status)
	}
	job, found, err := store.ClaimNext(context.Background())
	if err != nil || !found || job.DocumentID != doc.ID || job.Attempts != 2 {
		t.Fatalf("expected job back in the queue, got %+v found=%v err=%v", job, found, err)
	}
}
