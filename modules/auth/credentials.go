package auth

// Principal is an authenticated identity known to the service.
type Principal struct {
	Username       string
	HashedPassword string
}

// CredentialStore holds the principals the service accepts. The demo
// deployment has exactly one, constructed at process start; there is
// no registration or deletion at runtime.
type CredentialStore struct {
	principals map[string]Principal
}

// NewCredentialStore creates a store seeded with the demo principal.
func NewCredentialStore(hasher *PasswordHasher, username, password string) *CredentialStore {
	p := Principal{
		Username:       username,
		HashedPassword: hasher.Hash(password),
	}
	return &CredentialStore{
		principals: map[string]Principal{p.Username: p},
	}
}

// Lookup returns the principal for username, if one exists.
func (s *CredentialStore) Lookup(username string) (Principal, bool) {
	p, ok := s.principals[username]
	return p, ok
}
