package service

import (
	"context"
	"strings"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/repository"
	"github.com/google/uuid"
)

// ChannelService builds the read-only joined views: channel profiles with
// subscription counts and watch history with resolved owners.
type ChannelService struct {
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	videoRepo        repository.VideoRepository
}

func NewChannelService(userRepo repository.UserRepository, subscriptionRepo repository.SubscriptionRepository, videoRepo repository.VideoRepository) *ChannelService {
	return &ChannelService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		videoRepo:        videoRepo,
	}
}

// GetChannelProfile looks the channel up by lowercased username. viewerID may
// be nil for anonymous viewers, who are never subscribed.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*domain.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewError(domain.ErrValidation, "username is missing")
	}

	channel, err := s.userRepo.GetByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		return nil, notFoundAs(err, "channel does not exist")
	}

	subscribers, err := s.subscriptionRepo.CountByChannel(ctx, channel.ID)
	if err != nil {
		return nil, err
	}
	subscribedTo, err := s.subscriptionRepo.CountBySubscriber(ctx, channel.ID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != nil {
		isSubscribed, err = s.subscriptionRepo.Exists(ctx, *viewerID, channel.ID)
		if err != nil {
			return nil, err
		}
	}

	return &domain.ChannelProfile{
		ID:                       channel.ID,
		FullName:                 channel.FullName,
		Username:                 channel.Username,
		SubscribersCount:         subscribers,
		ChannelSubscribedToCount: subscribedTo,
		IsSubscribed:             isSubscribed,
		Avatar:                   channel.AvatarURL,
		CoverImage:               channel.CoverImageURL,
		Email:                    channel.Email,
		CreatedAt:                channel.CreatedAt,
	}, nil
}

// GetWatchHistory returns the viewer's watched videos in stored order. Ids
// with no matching video are skipped; a video whose owner is gone gets a nil
// Owner.
func (s *ChannelService) GetWatchHistory(ctx context.Context, viewerID uuid.UUID) ([]*domain.WatchedVideo, error) {
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	history := []*domain.WatchedVideo{}
	if len(viewer.WatchHistory) == 0 {
		return history, nil
	}

	videos, err := s.videoRepo.GetByIDs(ctx, uniqueIDs(viewer.WatchHistory))
	if err != nil {
		return nil, err
	}
	videosByID := make(map[uuid.UUID]*domain.Video, len(videos))
	ownerIDs := make([]uuid.UUID, 0, len(videos))
	for _, v := range videos {
		videosByID[v.ID] = v
		ownerIDs = append(ownerIDs, v.OwnerID)
	}

	owners, err := s.userRepo.GetOwners(ctx, uniqueIDs(ownerIDs))
	if err != nil {
		return nil, err
	}
	ownersByID := make(map[uuid.UUID]*domain.VideoOwner, len(owners))
	for _, o := range owners {
		// first match wins
		if _, seen := ownersByID[o.ID]; !seen {
			ownersByID[o.ID] = o
		}
	}

	for _, id := range viewer.WatchHistory {
		v, ok := videosByID[id]
		if !ok {
			continue
		}
		history = append(history, &domain.WatchedVideo{
			Video: *v,
			Owner: ownersByID[v.OwnerID],
		})
	}

	return history, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
