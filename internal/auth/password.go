package auth

import "github.com/alexedwards/argon2id"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Argon2idHasher hashes passwords with argon2id. Verification mismatch
// is reported as false, never as an error.
type Argon2idHasher struct {
	Params *argon2id.Params
}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{
		Params: &argon2id.Params{
			Memory:      64 * 1024, // 64 MiB
			Iterations:  2,
			Parallelism: 4,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

func (a *Argon2idHasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password, a.Params)
}

func (a *Argon2idHasher) Compare(hash, password string) bool {
	if hash == "" {
		return false
	}
	ok, err := argon2id.ComparePasswordAndHash(password, hash)
	return err == nil && ok
}
