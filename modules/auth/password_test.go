package auth

import (
	"testing"
)

func TestPasswordHasher_Hash(t *testing.T) {
	hasher := NewPasswordHasher()

	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "simple password",
			password: "password123",
		},
		{
			name:     "complex password",
			password: "P@ssw0rd!#$%^&*()",
		},
		{
			name:     "long password",
			password: "this-is-a-very-long-password-that-should-still-work-correctly",
		},
		{
			name:     "unicode password",
			password: "密码123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := hasher.Hash(tt.password)

			if hash == "" {
				t.Error("Hash() returned empty string")
			}

			if hash == tt.password {
				t.Error("Hash() returned the original password")
			}

			if !hasher.Verify(tt.password, hash) {
				t.Error("Verify() returned false for correct password")
			}
		})
	}
}

func TestPasswordHasher_Deterministic(t *testing.T) {
	hasher := NewPasswordHasher()

	// The fixed salt makes the digest a pure function of the
	// plaintext; the demo principal's stored digest depends on this.
	hash1 := hasher.Hash("samepassword")
	hash2 := hasher.Hash("samepassword")

	if hash1 != hash2 {
		t.Errorf("Hash() not deterministic: %q != %q", hash1, hash2)
	}
}

func TestPasswordHasher_Verify(t *testing.T) {
	hasher := NewPasswordHasher()
	password := "testpassword123"
	hash := hasher.Hash(password)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{
			name:     "correct password",
			password: password,
			hash:     hash,
			want:     true,
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			hash:     hash,
			want:     false,
		},
		{
			name:     "empty password",
			password: "",
			hash:     hash,
			want:     false,
		},
		{
			name:     "similar password",
			password: password + "1",
			hash:     hash,
			want:     false,
		},
		{
			name:     "empty hash",
			password: password,
			hash:     "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasher.Verify(tt.password, tt.hash)
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPasswordHasher_DemoCredential(t *testing.T) {
	hasher := NewPasswordHasher()
	store := NewCredentialStore(hasher, "admin", "admin")

	p, ok := store.Lookup("admin")
	if !ok {
		t.Fatal("Lookup() did not find demo principal")
	}

	if !hasher.Verify("admin", p.HashedPassword) {
		t.Error("Verify() rejected the demo password")
	}
	if hasher.Verify("wrong", p.HashedPassword) {
		t.Error("Verify() accepted a wrong password")
	}

	if _, ok := store.Lookup("nobody"); ok {
		t.Error("Lookup() found a principal that should not exist")
	}
}
