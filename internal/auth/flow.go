package auth

import (
	"context"
	"fmt"
	"time"
)

// UserStore is the slice of the credential store the flows need.
type UserStore interface {
	Create(ctx context.Context, fullName, email, passwordHash string, typ AccountType) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfile(ctx context.Context, id string, upd UserUpdate) (*User, error)
}

// EphemeralStore persists single-use verification/reset tokens.
type EphemeralStore interface {
	Replace(ctx context.Context, userID string, purpose TokenPurpose, rawToken string, expiresAt *time.Time) error
	Consume(ctx context.Context, userID string, purpose TokenPurpose, rawToken string) error
}

// MailSender dispatches transactional email. Failures are checked
// synchronously by every flow that sends mail.
type MailSender interface {
	Send(ctx context.Context, to, subject, fullName, text string) error
}

// Flow orchestrates the credential lifecycle: registration, email
// verification, login, and the password flows. Every method returns a
// sentinel error kind from errors.go; the transport layer translates
// them in one place.
type Flow struct {
	users    UserStore
	tokens   EphemeralStore
	issuer   *TokenIssuer
	hasher   PasswordHasher
	mailer   MailSender
	baseURL  string
	resetTTL time.Duration
}

func NewFlow(users UserStore, tokens EphemeralStore, issuer *TokenIssuer, hasher PasswordHasher, mailer MailSender, baseURL string, resetTTL time.Duration) *Flow {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &Flow{
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		hasher:   hasher,
		mailer:   mailer,
		baseURL:  baseURL,
		resetTTL: resetTTL,
	}
}

// Register creates an unverified credential record and sends the
// verification link. The token row is only persisted after the mail
// leaves, so a dispatch failure never strands a user with a token they
// never received; resend-verification recovers the sent-nothing state.
func (f *Flow) Register(ctx context.Context, fullName, email, password string, typ AccountType) (*User, error) {
	if !typ.Valid() {
		return nil, ErrInvalidType
	}

	existing, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hashed, err := f.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := f.users.Create(ctx, fullName, email, hashed, typ)
	if err != nil {
		return nil, err
	}

	if err := f.sendVerification(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyEmail flips the verification flag and consumes the token. A
// user who is already verified gets success without the token store
// being consulted at all.
func (f *Flow) VerifyEmail(ctx context.Context, userID, rawToken string) error {
	user, err := f.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	if user.IsVerified {
		return nil
	}

	tokenUser, tokenEmail, err := f.issuer.VerifyEmailVerificationToken(rawToken)
	if err != nil {
		return err
	}
	if tokenUser != user.ID || tokenEmail != user.Email {
		return ErrInvalidOrExpiredToken
	}

	if err := f.tokens.Consume(ctx, user.ID, PurposeVerifyEmail, rawToken); err != nil {
		return err
	}

	if err := f.users.SetVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (f *Flow) ResendVerification(ctx context.Context, email string) error {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	return f.sendVerification(ctx, user)
}

// Login exchanges verified credentials for a stateless access token.
func (f *Flow) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}
	if user == nil {
		return nil, "", ErrNotFound
	}
	if !user.IsVerified {
		return nil, "", ErrNotVerified
	}
	if !f.hasher.Compare(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := f.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue access token: %w", err)
	}
	return user, token, nil
}

func (f *Flow) ForgotPassword(ctx context.Context, email string) error {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	token, err := f.issuer.IssueResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	expires := time.Now().Add(f.resetTTL)
	if err := f.tokens.Replace(ctx, user.ID, PurposeResetPassword, token, &expires); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s/%s", f.baseURL, user.ID, token)
	text := fmt.Sprintf("Click the link to reset your password: %s. The link expires in %d minutes.",
		resetLink, int(f.resetTTL.Minutes()))
	if err := f.mailer.Send(ctx, user.Email, "Password Reset", user.FullName, text); err != nil {
		return ErrEmailDispatch
	}
	return nil
}

func (f *Flow) ResetPassword(ctx context.Context, userID, rawToken, newPassword string) error {
	user, err := f.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	tokenUser, err := f.issuer.VerifyResetToken(rawToken)
	if err != nil {
		return err
	}
	if tokenUser != user.ID {
		return ErrInvalidOrExpiredToken
	}

	if err := f.tokens.Consume(ctx, user.ID, PurposeResetPassword, rawToken); err != nil {
		return err
	}

	hashed, err := f.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := f.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (f *Flow) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := f.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	if !f.hasher.Compare(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}

	hashed, err := f.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := f.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (f *Flow) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := f.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *Flow) UpdateProfile(ctx context.Context, userID string, upd UserUpdate) (*User, error) {
	user, err := f.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// sendVerification issues a fresh verification token, mails the link and
// then persists the hashed token, replacing any outstanding one.
func (f *Flow) sendVerification(ctx context.Context, user *User) error {
	token, err := f.issuer.IssueEmailVerificationToken(user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email?token=%s/%s", f.baseURL, user.ID, token)
	text := fmt.Sprintf("Hello %s, please verify your email by clicking on this link: %s. Link expires in 30 minutes.",
		user.FullName, link)
	if err := f.mailer.Send(ctx, user.Email, "Email Verification Link", user.FullName, text); err != nil {
		return ErrEmailDispatch
	}

	return f.tokens.Replace(ctx, user.ID, PurposeVerifyEmail, token, nil)
}
