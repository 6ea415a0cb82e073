package httpadapter

import (
	"net/http"

	"dealmatch/internal/domain"
)

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	role, ok := pathParam(w, r, "role")
	if !ok {
		return
	}
	steps, err := s.svc.Onboarding.Schema(domain.Role(role))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, steps)
}

func (s *Server) postOnboarding(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, st, err := s.svc.Onboarding.Begin(r.Context(), req.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toState(id, st))
}

func (s *Server) getOnboarding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	st, err := s.svc.Onboarding.State(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toState(id, st))
}

func (s *Server) putAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	fieldID, ok := pathParam(w, r, "fieldID")
	if !ok {
		return
	}
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	value, err := req.toAnswer()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.svc.Onboarding.Answer(r.Context(), id, fieldID, value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toState(id, st))
}

// postAdvance answers 200 with the new state, or 201 with the stored
// profile once the last step has been submitted.
func (s *Server) postAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	st, profile, err := s.svc.Onboarding.Advance(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if profile != nil {
		respondJSON(w, http.StatusCreated, completedResponse{State: toState(id, st), Profile: toProfile(*profile)})
		return
	}
	respondJSON(w, http.StatusOK, toState(id, st))
}

func (s *Server) postBack(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	st, err := s.svc.Onboarding.Back(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toState(id, st))
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Profiles.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProfiles(ps))
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	p, err := s.svc.Profiles.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProfile(p))
}
