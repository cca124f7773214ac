package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dom/vidshare-backend/internal/auth"
	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/media"
	"github.com/dom/vidshare-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountService struct {
	userRepo repository.UserRepository
	store    media.Store
	reaper   media.Reaper
	logger   *slog.Logger
}

func NewAccountService(userRepo repository.UserRepository, store media.Store, reaper media.Reaper, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		userRepo: userRepo,
		store:    store,
		reaper:   reaper,
		logger:   logger,
	}
}

// RegisterInput carries local paths of already-received uploads. The cover
// image is optional.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarFile     string
	CoverImageFile string
}

type UpdateAccountInput struct {
	FullName string
	Email    string
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	for _, field := range []string{input.FullName, input.Email, input.Username, input.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, domain.NewError(domain.ErrValidation, "all fields are required")
		}
	}

	username := domain.NormalizeUsername(input.Username)
	email := domain.NormalizeEmail(input.Email)

	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		return nil, domain.NewError(domain.ErrConflict, "user with email or username already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.AvatarFile == "" {
		return nil, domain.NewError(domain.ErrValidation, "avatar file is required")
	}

	avatar := s.upload(ctx, input.AvatarFile)
	cover := s.upload(ctx, input.CoverImageFile)
	if avatar == nil {
		return nil, domain.NewError(domain.ErrMediaUpload, "avatar file is required")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		FullName:       strings.TrimSpace(input.FullName),
		PasswordHash:   hash,
		AvatarURL:      avatar.URL,
		AvatarPublicID: avatar.PublicID,
	}
	if cover != nil {
		user.CoverImageURL = cover.URL
		user.CoverImagePublicID = cover.PublicID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "registered user not found on read-back", "user_id", user.ID, "error", err)
		return nil, domain.NewError(domain.ErrInternal, "something went wrong while registering the user")
	}

	return created.Sanitized(), nil
}

func (s *AccountService) UpdateAccountDetails(ctx context.Context, userID uuid.UUID, input UpdateAccountInput) (*domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := domain.NormalizeEmail(input.Email)
	if fullName == "" || email == "" {
		return nil, domain.NewError(domain.ErrValidation, "all fields are required")
	}

	if err := s.userRepo.UpdateAccountDetails(ctx, userID, fullName, email); err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	return s.reload(ctx, userID)
}

func (s *AccountService) ReplaceAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, domain.NewError(domain.ErrValidation, "avatar file is missing")
	}

	avatar := s.upload(ctx, localPath)
	if avatar == nil {
		return nil, domain.NewError(domain.ErrMediaUpload, "error while uploading avatar")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	previous := user.AvatarPublicID

	if err := s.userRepo.UpdateAvatar(ctx, userID, avatar.URL, avatar.PublicID); err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	s.reaper.Reap(ctx, previous)

	return s.reload(ctx, userID)
}

// ReplaceCoverImage swaps the cover image; there may be no previous one.
func (s *AccountService) ReplaceCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, domain.NewError(domain.ErrValidation, "cover image file is missing")
	}

	cover := s.upload(ctx, localPath)
	if cover == nil {
		return nil, domain.NewError(domain.ErrMediaUpload, "error while uploading cover image")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	previous := user.CoverImagePublicID

	if err := s.userRepo.UpdateCoverImage(ctx, userID, cover.URL, cover.PublicID); err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	if previous != "" {
		s.reaper.Reap(ctx, previous)
	}

	return s.reload(ctx, userID)
}

// upload returns nil for anything short of a usable reference. Upload errors
// are logged here and surface to callers as ErrMediaUpload.
func (s *AccountService) upload(ctx context.Context, localPath string) *media.Asset {
	if localPath == "" {
		return nil
	}
	asset, err := s.store.Upload(ctx, localPath)
	if err != nil {
		s.logger.ErrorContext(ctx, "media upload failed", "error", err)
		return nil
	}
	if asset == nil || asset.URL == "" {
		return nil
	}
	return asset
}

func (s *AccountService) reload(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	return user.Sanitized(), nil
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewError(domain.ErrNotFound, message)
	}
	return err
}
