package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/repository/postgres"
	"github.com/dom/vidshare-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	newUser := func(username, email string) *domain.User {
		return &domain.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			FullName:     "Test User",
			PasswordHash: "hashedpassword",
			AvatarURL:    "https://media.test/a.png",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
	}

	tests := []struct {
		name         string
		user         *domain.User
		wantConflict bool
	}{
		{name: "successful creation", user: newUser("alice", "alice@example.com")},
		{name: "duplicate username", user: newUser("alice", "other@example.com"), wantConflict: true},
		{name: "duplicate email", user: newUser("alice2", "alice@example.com"), wantConflict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantConflict {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("getbyid_user").
		WithWatchHistory(uuid.New(), uuid.New()).
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		id      uuid.UUID
		wantErr error
	}{
		{name: "existing user", id: user.ID},
		{name: "non-existent user", id: uuid.New(), wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.Username, got.Username)
			assert.Equal(t, []uuid.UUID(user.WatchHistory), []uuid.UUID(got.WatchHistory))
		})
	}
}

func TestUserRepository_GetByUsernameOrEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("lookup").
		WithEmail("lookup@example.com").
		Build(t, testDB.DB)

	tests := []struct {
		name     string
		username string
		email    string
		found    bool
	}{
		{name: "by username", username: "lookup", found: true},
		{name: "by email", email: "lookup@example.com", found: true},
		{name: "either matches", username: "nobody", email: "lookup@example.com", found: true},
		{name: "neither matches", username: "nobody", email: "nobody@example.com"},
		{name: "both empty", username: "", email: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByUsernameOrEmail(ctx, tt.username, tt.email)
			if !tt.found {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserRepository_RefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "token-1"))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.HasRefreshToken())
	assert.Equal(t, "token-1", *got.RefreshToken)

	require.NoError(t, repo.ClearRefreshToken(ctx, user.ID))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.HasRefreshToken())

	// clearing twice is still fine
	require.NoError(t, repo.ClearRefreshToken(ctx, user.ID))

	assert.ErrorIs(t, repo.SetRefreshToken(ctx, uuid.New(), "x"), gorm.ErrRecordNotFound)
}

func TestUserRepository_Updates(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, testDB.DB)
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "keep-me"))

	t.Run("account details", func(t *testing.T) {
		require.NoError(t, repo.UpdateAccountDetails(ctx, user.ID, "New Name", "new@example.com"))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.FullName)
		assert.Equal(t, "new@example.com", got.Email)
	})

	t.Run("email owned by another user", func(t *testing.T) {
		err := repo.UpdateAccountDetails(ctx, user.ID, "New Name", other.Email)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("avatar and cover", func(t *testing.T) {
		require.NoError(t, repo.UpdateAvatar(ctx, user.ID, "https://media.test/new.png", "media/new.png"))
		require.NoError(t, repo.UpdateCoverImage(ctx, user.ID, "https://media.test/cover.png", "media/cover.png"))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://media.test/new.png", got.AvatarURL)
		assert.Equal(t, "media/new.png", got.AvatarPublicID)
		assert.Equal(t, "https://media.test/cover.png", got.CoverImageURL)
		assert.Equal(t, "media/cover.png", got.CoverImagePublicID)
		// column updates leave the session alone
		require.True(t, got.HasRefreshToken())
		assert.Equal(t, "keep-me", *got.RefreshToken)
	})

	t.Run("password hash", func(t *testing.T) {
		require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new-hash"))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateAvatar(ctx, uuid.New(), "u", "p"), gorm.ErrRecordNotFound)
	})
}

func TestUserRepository_GetOwners(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	a, _ := testutil.NewUserBuilder().WithFullName("Owner A").Build(t, testDB.DB)
	b, _ := testutil.NewUserBuilder().WithFullName("Owner B").Build(t, testDB.DB)

	owners, err := repo.GetOwners(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, owners, 2)

	byID := map[uuid.UUID]*domain.VideoOwner{}
	for _, o := range owners {
		byID[o.ID] = o
	}
	assert.Equal(t, "Owner A", byID[a.ID].FullName)
	assert.Equal(t, a.Username, byID[a.ID].Username)
	assert.Equal(t, a.AvatarURL, byID[a.ID].Avatar)
	assert.Equal(t, "Owner B", byID[b.ID].FullName)

	owners, err = repo.GetOwners(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestUserRepository_AppendWatchHistory(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	first, second := uuid.New(), uuid.New()

	require.NoError(t, repo.AppendWatchHistory(ctx, user.ID, first))
	require.NoError(t, repo.AppendWatchHistory(ctx, user.ID, second))
	require.NoError(t, repo.AppendWatchHistory(ctx, user.ID, first))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second, first}, []uuid.UUID(got.WatchHistory))

	assert.ErrorIs(t, repo.AppendWatchHistory(ctx, uuid.New(), first), gorm.ErrRecordNotFound)
}
