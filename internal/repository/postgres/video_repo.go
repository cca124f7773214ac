package postgres

import (
	"context"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *videoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// GetByIDs returns the matching videos in no particular order. Callers that
// need a specific order reassemble it themselves.
func (r *videoRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var videos []*domain.Video
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}
