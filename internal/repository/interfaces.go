package repository

import (
	"context"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	GetOwners(ctx context.Context, ids []uuid.UUID) ([]*domain.VideoOwner, error)
	UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, url, publicID string) error
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url, publicID string) error
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	AppendWatchHistory(ctx context.Context, id, videoID uuid.UUID) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	CountByChannel(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountBySubscriber(ctx context.Context, subscriberID uuid.UUID) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Video, error)
}

type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Video        VideoRepository
}
