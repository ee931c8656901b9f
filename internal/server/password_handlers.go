package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/auth"
)

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validateEmail(req.Email) {
		writeFailure(w, http.StatusBadRequest, "A valid email address is required")
		return
	}

	locked, retry, err := s.Limiter.RegisterResetAttempt(r.Context(), req.Email)
	if err == nil && locked {
		writeFailure(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many reset requests. Try again in %d minutes.", int(retry.Minutes())+1))
		return
	}

	cooldownKey := "reset_cooldown:" + req.Email
	if ttl := s.Limiter.CooldownTTL(r.Context(), cooldownKey); ttl > 0 {
		writeFailure(w, http.StatusTooManyRequests,
			fmt.Sprintf("Please wait %d seconds before requesting another email.", int(ttl.Seconds())+1))
		return
	}

	if err := s.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}

	s.Limiter.SetCooldown(r.Context(), cooldownKey, auth.EmailCooldown)
	writeMessage(w, http.StatusOK, "Password reset link sent. Please check your inbox.")
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	token := chi.URLParam(r, "token")
	if userID == "" || token == "" {
		writeFailure(w, http.StatusBadRequest, "Missing user id or token")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Auth.ResetPassword(r.Context(), userID, token, req.Password); err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successfully. You can now log in with your new password.")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())
	if claims == nil {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" {
		writeFailure(w, http.StatusBadRequest, "Current password is required")
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Auth.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password changed successfully")
}
