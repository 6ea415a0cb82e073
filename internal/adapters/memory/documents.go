package memory

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"dealmatch/internal/domain"
	"dealmatch/internal/ports"
)

type jobStatus string

const (
	jobQueued    jobStatus = "queued"
	jobRunning   jobStatus = "running"
	jobCompleted jobStatus = "completed"
	jobFailed    jobStatus = "failed"
)

type job struct {
	ports.AnalysisJob
	status jobStatus
	reason string
}

// Documents is the document collection plus its analysis job queue.
type Documents struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Document

	jobsMu sync.Mutex
	jobSeq int
	jobs   []*job
}

func NewDocuments() *Documents {
	return &Documents{byID: make(map[string]domain.Document)}
}

func (s *Documents) Insert(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	if _, ok := s.byID[doc.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("document %s: %w", doc.ID, ErrDuplicate)
	}
	s.byID[doc.ID] = cloneDocument(doc)
	s.order = append(s.order, doc.ID)
	s.mu.Unlock()

	if doc.Status == domain.DocumentAnalyzing {
		s.jobsMu.Lock()
		s.jobSeq++
		s.jobs = append(s.jobs, &job{
			AnalysisJob: ports.AnalysisJob{ID: "job-" + strconv.Itoa(s.jobSeq), DocumentID: doc.ID},
			status:      jobQueued,
		})
		s.jobsMu.Unlock()
	}
	return nil
}

func (s *Documents) Get(_ context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return cloneDocument(d), nil
}

func (s *Documents) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneDocument(s.byID[id]))
	}
	return out, nil
}

func (s *Documents) Update(_ context.Context, id string, fn func(*domain.Document) error) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	next := cloneDocument(d)
	if err := fn(&next); err != nil {
		return cloneDocument(d), err
	}
	next.ID = d.ID
	s.byID[id] = next
	return cloneDocument(next), nil
}

// ClaimNext hands out the oldest queued job and marks it running.
func (s *Documents) ClaimNext(_ context.Context) (ports.AnalysisJob, bool, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for _, j := range s.jobs {
		if j.status == jobQueued {
			j.status = jobRunning
			j.Attempts++
			return j.AnalysisJob, true, nil
		}
	}
	return ports.AnalysisJob{}, false, nil
}

func (s *Documents) MarkCompleted(_ context.Context, jobID string) error {
	return s.settle(jobID, jobCompleted, "")
}

func (s *Documents) MarkFailed(_ context.Context, jobID string, reason string) error {
	return s.settle(jobID, jobFailed, reason)
}

// Requeue returns a running job to the queue.
func (s *Documents) Requeue(_ context.Context, jobID string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for _, j := range s.jobs {
		if j.ID == jobID && j.status == jobRunning {
			j.status = jobQueued
			return nil
		}
	}
	return fmt.Errorf("running job %s: %w", jobID, domain.ErrNotFound)
}

// StartJobForDocument claims the queued job of a specific document.
func (s *Documents) StartJobForDocument(_ context.Context, documentID string) (string, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for _, j := range s.jobs {
		if j.DocumentID == documentID && j.status == jobQueued {
			j.status = jobRunning
			j.Attempts++
			return j.ID, nil
		}
	}
	return "", fmt.Errorf("queued job for document %s: %w", documentID, domain.ErrNotFound)
}

func (s *Documents) settle(jobID string, status jobStatus, reason string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for _, j := range s.jobs {
		if j.ID == jobID {
			j.status = status
			j.reason = reason
			return nil
		}
	}
	return fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
}

// Pending counts jobs not yet settled.
func (s *Documents) Pending() int {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if j.status == jobQueued || j.status == jobRunning {
			n++
		}
	}
	return n
}

// Ping always succeeds; it satisfies ports.Pinger.
func (s *Documents) Ping(context.Context) error { return nil }

func cloneDocument(d domain.Document) domain.Document {
	d.KeyMetrics = maps.Clone(d.KeyMetrics)
	return d
}
