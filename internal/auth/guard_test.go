package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeOwner(t *testing.T) {
	assert.NoError(t, AuthorizeOwner("profile-1", "profile-1"))
	assert.ErrorIs(t, AuthorizeOwner("profile-1", "profile-2"), ErrForbidden)
	assert.ErrorIs(t, AuthorizeOwner("profile-1", ""), ErrProfileNotFound)
}
