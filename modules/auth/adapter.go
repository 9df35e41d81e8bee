package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface other modules use to verify access
// tokens without touching the token service directly.
type AuthPort interface {
	VerifyAccessToken(ctx context.Context, token string) (string, error)
}

// ErrTokenRejected is returned by the adapter when the auth module
// reports the token as invalid or expired.
var ErrTokenRejected = errors.New("token rejected")

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// VerifyAccessToken verifies an access token and returns its subject.
func (a *AuthAdapter) VerifyAccessToken(ctx context.Context, token string) (string, error) {
	req := VerifyTokenRequest{Token: token}
	var resp VerifyTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"verify-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("verify-token request failed: %w", err)
	}

	if !resp.Valid {
		return "", fmt.Errorf("%w: %s", ErrTokenRejected, resp.Error)
	}

	return resp.Subject, nil
}
