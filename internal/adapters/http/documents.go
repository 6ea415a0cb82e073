package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dealmatch/internal/domain"
)

const defaultWaitTimeout = 30

func (s *Server) postDocument(w http.ResponseWriter, r *http.Request) {
	var wait *bool
	if !queryParam(w, r, "wait", false, &wait) {
		return
	}
	var timeout *int
	if !queryParam(w, r, "timeout", false, &timeout) {
		return
	}
	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := s.svc.Analysis.Upload(r.Context(), req.Name, req.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if wait == nil || !*wait {
		respondJSON(w, http.StatusAccepted, toDocument(doc))
		return
	}

	// Blocking path: run the analysis inline with the worker's code.
	secs := defaultWaitTimeout
	if timeout != nil && *timeout > 0 {
		secs = *timeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(secs)*time.Second)
	defer cancel()
	settled, err := s.svc.Analysis.Process(ctx, doc.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// A background worker claimed the job first.
		respondJSON(w, http.StatusAccepted, toDocument(doc))
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// Analysis carries on in the background and settles the document.
		respondJSON(w, http.StatusAccepted, toDocument(settled))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocument(settled))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Analysis.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	doc, err := s.svc.Analysis.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocument(doc))
}

func (s *Server) postComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req completeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := s.svc.Analysis.Complete(r.Context(), id, req.Summary, req.KeyMetrics)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocument(doc))
}

func (s *Server) postFail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req failRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := s.svc.Analysis.Fail(r.Context(), id, req.Reason)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocument(doc))
}
