package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dom/vidshare-backend/internal/domain"
)

// ErrRefreshTokenReused marks a refresh token presented after it was already
// exchanged. Callers should revoke the stored token when they see it.
var ErrRefreshTokenReused = fmt.Errorf("refresh token reuse detected: %w", domain.ErrTokenExpiredOrUsed)

// RotationStrategy decides whether a verified refresh token may be exchanged
// for a new pair. Rotated is called only once the new pair has been stored.
type RotationStrategy interface {
	Check(ctx context.Context, user *domain.User, presented string, claims *Claims) error
	Rotated(ctx context.Context, user *domain.User, consumed *Claims) error
}

// SingleSlotRotation accepts only the refresh token currently stored on the
// user. A logout or a previous exchange makes every older token stale.
type SingleSlotRotation struct{}

func (SingleSlotRotation) Check(_ context.Context, user *domain.User, presented string, _ *Claims) error {
	if !user.HasRefreshToken() {
		return domain.NewError(domain.ErrTokenExpiredOrUsed, "refresh token is expired or used")
	}
	if subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		return domain.NewError(domain.ErrTokenExpiredOrUsed, "refresh token is expired or used")
	}
	return nil
}

// Rotated has nothing to record: storing the new token already made the old
// one stale.
func (SingleSlotRotation) Rotated(context.Context, *domain.User, *Claims) error {
	return nil
}
