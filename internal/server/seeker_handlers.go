package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

func (s *Server) handleGetJobSeeker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile, err := s.Seekers.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleCreateJobSeeker(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	var in jobs.JobSeekerCreate
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := s.Seekers.Create(r.Context(), claims.Subject, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusCreated, profile)
}

func (s *Server) handleUpdateJobSeeker(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Seekers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	var upd jobs.JobSeekerUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.Seekers.Update(r.Context(), profile.ID, upd)
	if err != nil {
		respondError(w, err)
		return
	}
	if updated == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteJobSeeker(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Seekers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	if err := s.Seekers.Delete(r.Context(), profile.ID); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Job seeker profile deleted")
}
