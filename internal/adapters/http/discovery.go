package httpadapter

import (
	"net/http"

	"dealmatch/internal/matching"
)

const defaultStackDepth = 3

func (s *Server) getCurrent(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := pathParam(w, r, "viewerID")
	if !ok {
		return
	}
	p, pos, err := s.svc.Discovery.Current(r.Context(), viewerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, currentResponse{Profile: toProfile(p), Position: pos})
}

func (s *Server) getStack(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := pathParam(w, r, "viewerID")
	if !ok {
		return
	}
	var n *int
	if !queryParam(w, r, "n", false, &n) {
		return
	}
	depth := defaultStackDepth
	if n != nil {
		if *n < 0 {
			writeError(w, http.StatusBadRequest, "n must not be negative")
			return
		}
		depth = *n
	}
	ps, pos, err := s.svc.Discovery.Stack(r.Context(), viewerID, depth)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stackResponse{Profiles: toProfiles(ps), Position: pos})
}

func (s *Server) postSwipe(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := pathParam(w, r, "viewerID")
	if !ok {
		return
	}
	var req swipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	dir, err := matching.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Discovery.Swipe(r.Context(), viewerID, dir)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := swipeResponse{Position: res.Position, Exhausted: res.Exhausted}
	if res.Match != nil {
		m := toMatch(*res.Match)
		resp.Match = &m
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if !queryParam(w, r, "viewer", true, &viewerID) {
		return
	}
	ms, err := s.svc.Discovery.Matches(r.Context(), viewerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toMatches(ms))
}

// patchMatch applies a status change and/or a message excerpt in one update.
func (s *Server) patchMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req matchPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == nil && req.LastMessage == nil {
		writeError(w, http.StatusBadRequest, "status or lastMessage is required")
		return
	}
	m, err := s.svc.Discovery.UpdateMatch(r.Context(), id, matching.MatchChange{Status: req.Status, Message: req.LastMessage})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toMatch(m))
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := pathParam(w, r, "viewerID")
	if !ok {
		return
	}
	sum, err := s.svc.Dashboard.Summary(r.Context(), viewerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDashboard(sum))
}
