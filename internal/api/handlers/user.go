package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dom/vidshare-backend/internal/api/middleware"
	"github.com/dom/vidshare-backend/internal/api/response"
	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/service"
	"github.com/google/uuid"
)

type UserHandler struct {
	accounts *service.AccountService
	sessions *service.SessionService
	cookies  CookieSettings
	uploads  UploadSettings
	logger   *slog.Logger
}

func NewUserHandler(accounts *service.AccountService, sessions *service.SessionService, cookies CookieSettings, uploads UploadSettings, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		sessions: sessions,
		cookies:  cookies,
		uploads:  uploads,
		logger:   logger,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parse(w, r); err != nil {
		response.FromError(w, r, h.logger, "handlers.Register", err)
		return
	}

	avatar, err := h.uploads.save(r, "avatar")
	if err != nil {
		cleanup(r)
		response.FromError(w, r, h.logger, "handlers.Register", err)
		return
	}
	cover, err := h.uploads.save(r, "coverImage")
	if err != nil {
		cleanup(r, avatar)
		response.FromError(w, r, h.logger, "handlers.Register", err)
		return
	}
	defer cleanup(r, avatar, cover)

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarFile:     avatar,
		CoverImageFile: cover,
	})
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.Register", err)
		return
	}

	response.JSON(w, http.StatusCreated, user, "User registered successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sessions.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.Login", err)
		return
	}

	h.cookies.setSession(w, result.AccessToken, result.RefreshToken)
	response.JSON(w, http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "User logged in successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.sessions.Logout(r.Context(), userID); err != nil {
		response.FromError(w, r, h.logger, "handlers.Logout", err)
		return
	}

	h.cookies.clearSession(w)
	response.JSON(w, http.StatusOK, nil, "User logged out")
}

// RefreshToken accepts the refresh token from its cookie or, failing that,
// from a JSON body.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		token = req.RefreshToken
	}

	pair, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.RefreshToken", err)
		return
	}

	h.cookies.setSession(w, pair.AccessToken, pair.RefreshToken)
	response.JSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.sessions.ChangePassword(r.Context(), userID, service.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.ChangePassword", err)
		return
	}

	response.JSON(w, http.StatusOK, nil, "Password changed successfully")
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	response.JSON(w, http.StatusOK, user, "User fetched successfully")
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.UpdateAccountDetails(r.Context(), userID, service.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.UpdateAccount", err)
		return
	}

	response.JSON(w, http.StatusOK, user, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceMedia(w, r, "avatar", h.accounts.ReplaceAvatar, "Avatar image updated successfully")
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceMedia(w, r, "coverImage", h.accounts.ReplaceCoverImage, "Cover image updated successfully")
}

type replaceFunc func(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error)

func (h *UserHandler) replaceMedia(w http.ResponseWriter, r *http.Request, field string, replace replaceFunc, message string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	op := "handlers.Update" + field
	if err := h.uploads.parse(w, r); err != nil {
		response.FromError(w, r, h.logger, op, err)
		return
	}
	path, err := h.uploads.save(r, field)
	if err != nil {
		cleanup(r)
		response.FromError(w, r, h.logger, op, err)
		return
	}
	defer cleanup(r, path)

	user, err := replace(r.Context(), userID, path)
	if err != nil {
		response.FromError(w, r, h.logger, op, err)
		return
	}

	response.JSON(w, http.StatusOK, user, message)
}
