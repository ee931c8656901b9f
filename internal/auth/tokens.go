package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Hayor63/ApplyLy/internal/config"
)

// Audience values keep the three token purposes in distinct signing
// contexts; each purpose also signs with its own secret.
const (
	audienceAccess = "applyly:access"
	audienceVerify = "applyly:verify-email"
	audienceReset  = "applyly:reset-password"
)

// AccessClaims embed a snapshot of the public user fields so request
// authentication does not need a user lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Type       AccountType `json:"type"`
	IsVerified bool        `json:"isVerified"`
}

type emailClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type TokenIssuer struct {
	cfg config.TokenConfig
}

func NewTokenIssuer(cfg config.TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg}
}

func (t *TokenIssuer) IssueAccessToken(u *User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
		FullName:   u.FullName,
		Email:      u.Email,
		Type:       u.Type,
		IsVerified: u.IsVerified,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.AccessSecret))
}

func (t *TokenIssuer) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(raw, claims, t.cfg.AccessSecret, audienceAccess); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) IssueEmailVerificationToken(userID, email string) (string, error) {
	now := time.Now()
	claims := emailClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceVerify},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.EmailTTL)),
			ID:        uuid.NewString(),
		},
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.EmailSecret))
}

// VerifyEmailVerificationToken returns the user id and email the token
// was issued for.
func (t *TokenIssuer) VerifyEmailVerificationToken(raw string) (string, string, error) {
	claims := &emailClaims{}
	if err := t.parse(raw, claims, t.cfg.EmailSecret, audienceVerify); err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Email, nil
}

func (t *TokenIssuer) IssueResetToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{audienceReset},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.ResetTTL)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.ResetSecret))
}

func (t *TokenIssuer) VerifyResetToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := t.parse(raw, claims, t.cfg.ResetSecret, audienceReset); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// parse fails closed: malformed, expired, mis-signed and wrong-audience
// tokens all collapse to ErrInvalidOrExpiredToken.
func (t *TokenIssuer) parse(raw string, claims jwt.Claims, secret, audience string) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidOrExpiredToken
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrInvalidOrExpiredToken
	}
	return nil
}
