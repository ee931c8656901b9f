package server

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

type envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, StatusCode: status, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, StatusCode: status, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, StatusCode: status, Message: message})
}

// respondError is the single place where flow error kinds become HTTP
// statuses. Unexpected errors are logged and surfaced as a generic 500;
// internals never leak into the body.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		writeFailure(w, http.StatusBadRequest, "Unable to create account. Please try again or use a different email.")
	case errors.Is(err, auth.ErrInvalidType):
		writeFailure(w, http.StatusBadRequest, "Invalid account type provided")
	case errors.Is(err, auth.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrNotVerified):
		writeFailure(w, http.StatusForbidden, "Please verify your email before logging in.")
	case errors.Is(err, auth.ErrAlreadyVerified):
		writeFailure(w, http.StatusBadRequest, "User already verified")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, auth.ErrSamePassword):
		writeFailure(w, http.StatusBadRequest, "New password must be different from current password")
	case errors.Is(err, auth.ErrEmailDispatch):
		writeFailure(w, http.StatusInternalServerError, "Failed to send email")
	case errors.Is(err, auth.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "You are not authorized to perform this action")
	case errors.Is(err, auth.ErrProfileNotFound):
		writeFailure(w, http.StatusNotFound, "Profile not found. Please complete your registration.")
	case errors.Is(err, jobs.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, jobs.ErrDuplicateProfile):
		writeFailure(w, http.StatusBadRequest, "Profile already exists")
	case errors.Is(err, jobs.ErrDuplicateApplication):
		writeFailure(w, http.StatusBadRequest, "You have already applied for this job")
	case errors.Is(err, jobs.ErrDuplicateBookmark):
		writeFailure(w, http.StatusBadRequest, "Job already bookmarked")
	default:
		logUnexpected(err)
		writeFailure(w, http.StatusInternalServerError, "Internal server error")
	}
}

func logUnexpected(err error) {
	log.Printf("internal error: %v", err)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func validateEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one number")
	}
	if !hasSpecial {
		return errors.New("password must contain at least one special character")
	}
	return nil
}

func clientIP(r *http.Request, trusted []net.IPNet) string {
	remoteHost, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || remoteHost == "" {
		remoteHost = r.RemoteAddr
	}

	// Only trust forwarded headers when the immediate sender is a trusted proxy.
	if remoteHost != "" && isTrustedProxy(remoteHost, trusted) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
			return strings.TrimSpace(xrip)
		}
	}

	return remoteHost
}

func parseProxyCIDRs(values []string) []net.IPNet {
	var nets []net.IPNet
	for _, v := range values {
		val := strings.TrimSpace(v)
		if val == "" {
			continue
		}
		if ip := net.ParseIP(val); ip != nil {
			mask := net.CIDRMask(128, 128)
			if ip.To4() != nil {
				mask = net.CIDRMask(32, 32)
			}
			nets = append(nets, net.IPNet{IP: ip, Mask: mask})
			continue
		}
		if _, cidr, err := net.ParseCIDR(val); err == nil {
			nets = append(nets, *cidr)
		}
	}
	return nets
}

func isTrustedProxy(ipStr string, proxies []net.IPNet) bool {
	if len(proxies) == 0 {
		return false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, n := range proxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
