package service

import (
	"log/slog"

	"github.com/dom/vidshare-backend/internal/auth"
	"github.com/dom/vidshare-backend/internal/logging"
	"github.com/dom/vidshare-backend/internal/media"
	"github.com/dom/vidshare-backend/internal/repository"
)

type Services struct {
	Account *AccountService
	Session *SessionService
	Channel *ChannelService
}

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Tokens   *auth.TokenService
	Rotation auth.RotationStrategy
	Media    media.Store
	Reaper   media.Reaper
	Logger   *slog.Logger
}

func NewServices(repos *repository.Repositories, deps Dependencies) *Services {
	return &Services{
		Account: NewAccountService(repos.User, deps.Media, deps.Reaper, logging.WithComponent(deps.Logger, "account")),
		Session: NewSessionService(repos.User, deps.Tokens, deps.Rotation, logging.WithComponent(deps.Logger, "session")),
		Channel: NewChannelService(repos.User, repos.Subscription, repos.Video),
	}
}
