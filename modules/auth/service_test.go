package auth

import (
	"context"
	"errors"
	"testing"
)

func newTestService() *AuthService {
	hasher := NewPasswordHasher()
	creds := NewCredentialStore(hasher, "admin", "admin")
	return NewAuthService(creds, hasher, NewJWTManager(testJWTConfig()))
}

func TestAuthService_Login(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			username: "admin",
			password: "admin",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "admin",
			password: "wrong",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "nobody",
			password: "admin",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "empty credentials",
			username: "",
			password: "",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := service.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if tokens.AccessToken == "" || tokens.RefreshToken == "" {
				t.Error("Login() returned empty tokens")
			}
			if tokens.TokenType != "bearer" {
				t.Errorf("TokenType = %v, want bearer", tokens.TokenType)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	tokens, err := service.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		refreshed, err := service.Refresh(ctx, tokens.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}

		if refreshed.AccessToken == "" {
			t.Error("Refresh() returned empty access token")
		}
		// Refresh tokens are not rotated.
		if refreshed.RefreshToken != tokens.RefreshToken {
			t.Error("Refresh() should echo the presented refresh token")
		}

		subject, err := service.VerifyAccess(ctx, refreshed.AccessToken)
		if err != nil {
			t.Fatalf("VerifyAccess() error = %v", err)
		}
		if subject != "admin" {
			t.Errorf("subject = %v, want admin", subject)
		}
	})

	t.Run("access token rejected as refresh", func(t *testing.T) {
		if _, err := service.Refresh(ctx, tokens.AccessToken); err == nil {
			t.Error("Refresh() should reject an access token")
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		if _, err := service.Refresh(ctx, "not-a-token"); err == nil {
			t.Error("Refresh() should reject a malformed token")
		}
	})
}

func TestAuthService_VerifyAccess(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	tokens, err := service.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("valid access token", func(t *testing.T) {
		subject, err := service.VerifyAccess(ctx, tokens.AccessToken)
		if err != nil {
			t.Fatalf("VerifyAccess() error = %v", err)
		}
		if subject != "admin" {
			t.Errorf("subject = %v, want admin", subject)
		}
	})

	t.Run("refresh token rejected as access", func(t *testing.T) {
		if _, err := service.VerifyAccess(ctx, tokens.RefreshToken); err == nil {
			t.Error("VerifyAccess() should reject a refresh token")
		}
	})
}
