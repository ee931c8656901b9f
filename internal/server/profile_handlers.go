package server

import (
	"net/http"
	"strings"

	"github.com/Hayor63/ApplyLy/internal/auth"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())
	if claims == nil {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.Auth.Profile(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())
	if claims == nil {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var upd auth.UserUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.Empty() {
		writeFailure(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if upd.FullName != nil && strings.TrimSpace(*upd.FullName) == "" {
		writeFailure(w, http.StatusBadRequest, "Full name cannot be empty")
		return
	}

	user, err := s.Auth.UpdateProfile(r.Context(), claims.Subject, upd)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}
