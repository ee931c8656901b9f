package auth

// AuthorizeOwner decides whether the requester, resolved to their
// role-specific profile id, may mutate a resource owned by ownerID.
// Ownership is plain value equality; a requester with no profile cannot
// own anything.
func AuthorizeOwner(ownerID, profileID string) error {
	if profileID == "" {
		return ErrProfileNotFound
	}
	if ownerID != profileID {
		return ErrForbidden
	}
	return nil
}
