package model

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	Issue(identity Identity) (string, error)
	// Verify returns ErrInvalidCredentials (wrapped) for any token that is
	// malformed, expired or signed with another secret.
	Verify(token string) (Identity, error)
}

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
