package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned when login credentials are invalid.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// TokenPair carries an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
}

// AuthService handles authentication business logic.
type AuthService struct {
	creds  *CredentialStore
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(creds *CredentialStore, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		creds:  creds,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Login authenticates a principal and returns a token pair.
func (s *AuthService) Login(_ context.Context, username, password string) (*TokenPair, error) {
	principal, ok := s.creds.Lookup(username)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, principal.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwt.GenerateAccessToken(principal.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(principal.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// presented refresh token is returned unchanged; refresh tokens are
// not rotated.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	// The principal must still exist; tokens outlive nothing here
	// since the store is fixed at startup, but the check keeps the
	// flow correct if that ever changes.
	if _, ok := s.creds.Lookup(claims.Subject); !ok {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwt.GenerateAccessToken(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "bearer",
	}, nil
}

// VerifyAccess validates an access token and returns its subject.
func (s *AuthService) VerifyAccess(_ context.Context, token string) (string, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
