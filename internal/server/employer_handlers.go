package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

func (s *Server) handleGetEmployer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile, err := s.Employers.FindByID(r.Context(), id)
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

func (s *Server) handleCreateEmployer(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	var in jobs.EmployerCreate
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		writeFailure(w, http.StatusBadRequest, "Company name is required")
		return
	}

	profile, err := s.Employers.Create(r.Context(), claims.Subject, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusCreated, profile)
}

func (s *Server) handleUpdateEmployer(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	var upd jobs.EmployerUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.CompanyName != nil && strings.TrimSpace(*upd.CompanyName) == "" {
		writeFailure(w, http.StatusBadRequest, "Company name cannot be empty")
		return
	}

	updated, err := s.Employers.Update(r.Context(), profile.ID, upd)
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

func (s *Server) handleDeleteEmployer(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	if err := s.Employers.Delete(r.Context(), profile.ID); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Employer profile deleted")
}
