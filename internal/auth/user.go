package auth

import "time"

type AccountType string

const (
	AccountJobSeeker AccountType = "jobseeker"
	AccountEmployer  AccountType = "employer"
)

func (t AccountType) Valid() bool {
	return t == AccountJobSeeker || t == AccountEmployer
}

// User is the credential record. The password hash never serializes.
type User struct {
	ID           string      `json:"id"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Type         AccountType `json:"type"`
	IsVerified   bool        `json:"isVerified"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// UserUpdate enumerates the profile fields a user may change about
// their own credential record. Unknown fields are rejected at the
// decoding boundary, not silently applied.
type UserUpdate struct {
	FullName *string `json:"fullName"`
}

func (u UserUpdate) Empty() bool {
	return u.FullName == nil
}
