package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/vidshare-backend/internal/api/middleware"
	"github.com/dom/vidshare-backend/internal/api/response"
	"github.com/dom/vidshare-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ChannelHandler struct {
	channels *service.ChannelService
	logger   *slog.Logger
}

func NewChannelHandler(channels *service.ChannelService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{channels: channels, logger: logger}
}

// GetChannelProfile is reachable anonymously; isSubscribed is only true when
// the request carries a valid session.
func (h *ChannelHandler) GetChannelProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var viewer *uuid.UUID
	if id, ok := middleware.GetUserID(r.Context()); ok {
		viewer = &id
	}

	profile, err := h.channels.GetChannelProfile(r.Context(), username, viewer)
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.GetChannelProfile", err)
		return
	}

	response.JSON(w, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *ChannelHandler) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	history, err := h.channels.GetWatchHistory(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, h.logger, "handlers.GetWatchHistory", err)
		return
	}

	response.JSON(w, http.StatusOK, history, "Watch history fetched successfully")
}
