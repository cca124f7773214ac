package postgres

import (
	"context"
	"errors"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsernameOrEmail returns the first user matching either identifier.
// An empty identifier never matches.
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("(username = ? AND username <> '') OR (email = ? AND email <> '')", username, email).
		Order("created_at").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type ownerRow struct {
	ID        uuid.UUID
	FullName  string
	Username  string
	AvatarURL string
}

func (r *userRepository) GetOwners(ctx context.Context, ids []uuid.UUID) ([]*domain.VideoOwner, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []ownerRow
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("id", "full_name", "username", "avatar_url").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	owners := make([]*domain.VideoOwner, 0, len(rows))
	for _, row := range rows {
		owners = append(owners, &domain.VideoOwner{
			ID:       row.ID,
			FullName: row.FullName,
			Username: row.Username,
			Avatar:   row.AvatarURL,
		})
	}
	return owners, nil
}

func (r *userRepository) UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"full_name": fullName,
		"email":     email,
	})
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, url, publicID string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"avatar_url":       url,
		"avatar_public_id": publicID,
	})
}

func (r *userRepository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url, publicID string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"cover_image_url":       url,
		"cover_image_public_id": publicID,
	})
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"refresh_token": token})
}

// ClearRefreshToken is idempotent: clearing an absent token succeeds.
func (r *userRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"refresh_token": nil})
}

// AppendWatchHistory adds videoID to the end of the user's history in a
// single statement. An empty history may be stored as JSON null.
func (r *userRepository) AppendWatchHistory(ctx context.Context, id, videoID uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"watch_history": gorm.Expr(
			"CASE WHEN jsonb_typeof(watch_history) = 'array' THEN watch_history ELSE '[]'::jsonb END || jsonb_build_array(?::text)",
			videoID.String(),
		),
	})
}

func (r *userRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewError(domain.ErrConflict, "user with email or username already exists")
	}
	return err
}
