package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2idHasher(t *testing.T) {
	hasher := NewArgon2idHasher()

	hash, err := hasher.Hash("Sup3rSecret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, hasher.Compare(hash, "Sup3rSecret!"))
	assert.False(t, hasher.Compare(hash, "sup3rsecret!"))
	assert.False(t, hasher.Compare(hash, ""))
}

func TestArgon2idHasherSaltsEveryHash(t *testing.T) {
	hasher := NewArgon2idHasher()

	first, err := hasher.Hash("Sup3rSecret!")
	require.NoError(t, err)
	second, err := hasher.Hash("Sup3rSecret!")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCompareRejectsGarbageHash(t *testing.T) {
	hasher := NewArgon2idHasher()

	assert.False(t, hasher.Compare("", "password"))
	assert.False(t, hasher.Compare("not-a-hash", "password"))
}
