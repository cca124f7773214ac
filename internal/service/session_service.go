package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dom/vidshare-backend/internal/auth"
	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
	rotation auth.RotationStrategy
	logger   *slog.Logger
}

func NewSessionService(userRepo repository.UserRepository, tokens *auth.TokenService, rotation auth.RotationStrategy, logger *slog.Logger) *SessionService {
	if rotation == nil {
		rotation = auth.SingleSlotRotation{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		userRepo: userRepo,
		tokens:   tokens,
		rotation: rotation,
		logger:   logger,
	}
}

// LoginInput identifies the account by username or email; either may be empty
// but not both.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *SessionService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := domain.NormalizeUsername(input.Username)
	email := domain.NormalizeEmail(input.Email)
	if username == "" && email == "" {
		return nil, domain.NewError(domain.ErrValidation, "username or email is required")
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrAccountNotFound, "user does not exist")
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, domain.NewError(domain.ErrInvalidCredentials, "invalid user credentials")
	}

	pair, err := s.rotate(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout forgets the stored refresh token. Calling it twice is fine.
func (s *SessionService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.userRepo.ClearRefreshToken(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// Refresh exchanges a refresh token for a new pair. Only the token currently
// stored on the user is accepted, as decided by the rotation strategy.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "unauthorized request")
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidToken, "invalid refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidToken, "invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrInvalidToken, "invalid refresh token")
		}
		return nil, err
	}

	if err := s.rotation.Check(ctx, user, refreshToken, claims); err != nil {
		if errors.Is(err, auth.ErrRefreshTokenReused) {
			s.revoke(ctx, user)
		}
		return nil, err
	}

	pair, err := s.rotate(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.rotation.Rotated(ctx, user, claims); err != nil {
		if errors.Is(err, auth.ErrRefreshTokenReused) {
			s.revoke(ctx, user)
			return nil, err
		}
		// The new token is already stored, so the old one is stale either way.
		s.logger.WarnContext(ctx, "failed to record consumed refresh token", "user_id", user.ID, "error", err)
	}

	return pair, nil
}

func (s *SessionService) revoke(ctx context.Context, user *domain.User) {
	s.logger.WarnContext(ctx, "refresh token replayed, revoking session", "user_id", user.ID)
	if err := s.userRepo.ClearRefreshToken(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke session", "user_id", user.ID, "error", err)
	}
}

// ChangePassword leaves the stored refresh token untouched, so existing
// sessions keep working.
func (s *SessionService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if strings.TrimSpace(input.NewPassword) == "" {
		return domain.NewError(domain.ErrValidation, "new password is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewError(domain.ErrNotFound, "user not found")
		}
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, input.OldPassword) {
		return domain.NewError(domain.ErrIncorrectPassword, "incorrect password")
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.userRepo.UpdatePasswordHash(ctx, user.ID, hash)
}

// Authenticate resolves an access token to the sanitized user it names.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "unauthorized request")
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidToken, "invalid access token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidToken, "invalid access token")
	}

	return s.CurrentUser(ctx, userID)
}

func (s *SessionService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrInvalidToken, "invalid access token")
		}
		return nil, err
	}
	return user.Sanitized(), nil
}

// rotate issues a fresh pair and stores its refresh token on the user,
// replacing whatever was there.
func (s *SessionService) rotate(ctx context.Context, user *domain.User) (*auth.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, domain.NewError(domain.ErrInternal, "something went wrong while generating access and refresh tokens")
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		s.logger.ErrorContext(ctx, "failed to store refresh token", "user_id", user.ID, "error", err)
		return nil, domain.NewError(domain.ErrInternal, "something went wrong while generating access and refresh tokens")
	}

	return pair, nil
}
