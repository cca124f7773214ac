package service_test

import (
	"context"
	"testing"

	"github.com/dom/vidshare-backend/internal/auth"
	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/service"
	"github.com/dom/vidshare-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	validInput := func(t *testing.T) service.RegisterInput {
		return service.RegisterInput{
			FullName:       "  Jane Doe ",
			Email:          "Jane@Example.com",
			Username:       "JaneDoe",
			Password:       "password123",
			AvatarFile:     testutil.TempImage(t, "avatar.png"),
			CoverImageFile: testutil.TempImage(t, "cover.jpg"),
		}
	}

	tests := []struct {
		name    string
		setup   func(t *testing.T)
		input   func(t *testing.T) service.RegisterInput
		wantErr error
	}{
		{
			name:  "successful registration",
			input: validInput,
		},
		{
			name: "avatar only",
			input: func(t *testing.T) service.RegisterInput {
				in := validInput(t)
				in.CoverImageFile = ""
				return in
			},
		},
		{
			name: "blank full name",
			input: func(t *testing.T) service.RegisterInput {
				in := validInput(t)
				in.FullName = "   "
				return in
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "blank password",
			input: func(t *testing.T) service.RegisterInput {
				in := validInput(t)
				in.Password = ""
				return in
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "missing avatar with cover image",
			input: func(t *testing.T) service.RegisterInput {
				in := validInput(t)
				in.AvatarFile = ""
				return in
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "duplicate username in another case",
			setup: func(t *testing.T) {
				testutil.NewUserBuilder().WithUsername("janedoe").Build(t, env.db.DB)
			},
			input:   validInput,
			wantErr: domain.ErrConflict,
		},
		{
			name: "duplicate email in another case",
			setup: func(t *testing.T) {
				testutil.NewUserBuilder().WithEmail("jane@example.com").Build(t, env.db.DB)
			},
			input:   validInput,
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.db.Truncate(t)
			if tt.setup != nil {
				tt.setup(t)
			}

			input := tt.input(t)
			user, err := env.services.Account.Register(ctx, input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "janedoe", user.Username)
			assert.Equal(t, "jane@example.com", user.Email)
			assert.Equal(t, "Jane Doe", user.FullName)
			assert.NotEmpty(t, user.AvatarURL)
			assert.Empty(t, user.PasswordHash)
			assert.Nil(t, user.RefreshToken)
			if input.CoverImageFile == "" {
				assert.Empty(t, user.CoverImageURL)
			} else {
				assert.NotEmpty(t, user.CoverImageURL)
			}

			// uploads consume their local files
			assert.False(t, testutil.FileExists(input.AvatarFile))

			stored, err := env.repos.User.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.True(t, auth.CheckPassword(stored.PasswordHash, "password123"))
			assert.True(t, env.store.Has(stored.AvatarPublicID))
		})
	}
}

func TestAccountService_RegisterUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.store.SetFailUpload(true)
	defer env.store.SetFailUpload(false)

	avatar := testutil.TempImage(t, "avatar.png")
	user, err := env.services.Account.Register(ctx, service.RegisterInput{
		FullName:   "Jane Doe",
		Email:      "jane@example.com",
		Username:   "janedoe",
		Password:   "password123",
		AvatarFile: avatar,
	})
	assert.ErrorIs(t, err, domain.ErrMediaUpload)
	assert.Nil(t, user)
	assert.False(t, testutil.FileExists(avatar))

	_, err = env.repos.User.GetByUsername(ctx, "janedoe")
	assert.Error(t, err, "no user should be persisted")
}

func TestAccountService_UpdateAccountDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	other, _ := testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, env.db.DB)

	tests := []struct {
		name    string
		userID  uuid.UUID
		input   service.UpdateAccountInput
		wantErr error
	}{
		{name: "success", userID: user.ID, input: service.UpdateAccountInput{FullName: "Renamed", Email: "Renamed@Example.com"}},
		{name: "missing full name", userID: user.ID, input: service.UpdateAccountInput{Email: "x@example.com"}, wantErr: domain.ErrValidation},
		{name: "missing email", userID: user.ID, input: service.UpdateAccountInput{FullName: "x"}, wantErr: domain.ErrValidation},
		{name: "email of another user", userID: user.ID, input: service.UpdateAccountInput{FullName: "x", Email: other.Email}, wantErr: domain.ErrConflict},
		{name: "unknown user", userID: uuid.New(), input: service.UpdateAccountInput{FullName: "x", Email: "y@example.com"}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.services.Account.UpdateAccountDetails(ctx, tt.userID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.FullName)
			assert.Equal(t, "renamed@example.com", got.Email)
			assert.Empty(t, got.PasswordHash)
		})
	}
}

func TestAccountService_ReplaceAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	previous := user.AvatarPublicID

	t.Run("missing file", func(t *testing.T) {
		_, err := env.services.Account.ReplaceAvatar(ctx, user.ID, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("upload failure keeps the old avatar", func(t *testing.T) {
		env.store.SetFailUpload(true)
		defer env.store.SetFailUpload(false)

		_, err := env.services.Account.ReplaceAvatar(ctx, user.ID, testutil.TempImage(t, "a.png"))
		assert.ErrorIs(t, err, domain.ErrMediaUpload)

		stored, err := env.repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.AvatarURL, stored.AvatarURL)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.services.Account.ReplaceAvatar(ctx, uuid.New(), testutil.TempImage(t, "a.png"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("success reaps the previous asset", func(t *testing.T) {
		got, err := env.services.Account.ReplaceAvatar(ctx, user.ID, testutil.TempImage(t, "new.png"))
		require.NoError(t, err)
		assert.NotEqual(t, user.AvatarURL, got.AvatarURL)
		assert.Contains(t, env.reaper.Reaped(), previous)

		stored, err := env.repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, env.store.Has(stored.AvatarPublicID))
	})
}

func TestAccountService_ReplaceCoverImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("first cover reaps nothing", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
		before := len(env.reaper.Reaped())

		got, err := env.services.Account.ReplaceCoverImage(ctx, user.ID, testutil.TempImage(t, "cover.png"))
		require.NoError(t, err)
		assert.NotEmpty(t, got.CoverImageURL)
		assert.Len(t, env.reaper.Reaped(), before)
	})

	t.Run("replacing reaps the previous cover", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().WithCoverImage("https://media.test/old-cover.png").Build(t, env.db.DB)

		got, err := env.services.Account.ReplaceCoverImage(ctx, user.ID, testutil.TempImage(t, "cover.png"))
		require.NoError(t, err)
		assert.NotEqual(t, "https://media.test/old-cover.png", got.CoverImageURL)
		assert.Contains(t, env.reaper.Reaped(), user.CoverImagePublicID)
	})

	t.Run("missing file", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
		_, err := env.services.Account.ReplaceCoverImage(ctx, user.ID, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
