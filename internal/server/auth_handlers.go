package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/auth"
)

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		writeFailure(w, http.StatusBadRequest, "Full name is required")
		return
	}
	if !validateEmail(req.Email) {
		writeFailure(w, http.StatusBadRequest, "A valid email address is required")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	ip := clientIP(r, s.trustedProxies)
	locked, retry, err := s.Limiter.RegisterRegisterAttempt(r.Context(), req.Email, ip)
	if err == nil && locked {
		writeFailure(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many signup attempts. Try again in %d minutes.", int(retry.Minutes())+1))
		return
	}

	user, err := s.Auth.Register(r.Context(), req.FullName, req.Email, req.Password, auth.AccountType(req.Type))
	if err != nil {
		respondError(w, err)
		return
	}

	writeData(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"message": "Account created. Please check your email for a verification link.",
	})
}

func (s *Server) handleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	token := chi.URLParam(r, "token")
	if userID == "" || token == "" {
		writeFailure(w, http.StatusBadRequest, "Missing user id or token")
		return
	}

	locked, retry, err := s.Limiter.RegisterVerifyAttempt(r.Context(), userID)
	if err == nil && locked {
		writeFailure(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many verification attempts. Try again in %d minutes.", int(retry.Minutes())+1))
		return
	}

	if err := s.Auth.VerifyEmail(r.Context(), userID, token); err != nil {
		respondError(w, err)
		return
	}

	s.Limiter.ResetVerify(r.Context(), userID)
	writeMessage(w, http.StatusOK, "Email verified successfully. You can now log in.")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ip := clientIP(r, s.trustedProxies)
	if s.Limiter.IsIPBanned(r.Context(), ip) {
		writeFailure(w, http.StatusTooManyRequests, "Too many failed login attempts. Try again later.")
		return
	}

	user, token, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Failed credentials count toward the ban; a missing account or
		// unverified email does not reveal itself differently here.
		_ = s.Limiter.RegisterLoginFailure(r.Context(), ip)
		respondError(w, err)
		return
	}

	s.Limiter.ResetLogin(r.Context(), ip)
	writeData(w, http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"user":        user,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
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

	cooldownKey := "resend_cooldown:" + req.Email
	if ttl := s.Limiter.CooldownTTL(r.Context(), cooldownKey); ttl > 0 {
		writeFailure(w, http.StatusTooManyRequests,
			fmt.Sprintf("Please wait %d seconds before requesting another email.", int(ttl.Seconds())+1))
		return
	}

	if err := s.Auth.ResendVerification(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}

	s.Limiter.SetCooldown(r.Context(), cooldownKey, auth.EmailCooldown)
	writeMessage(w, http.StatusOK, "Verification email sent. Please check your inbox.")
}
