// Package app assembles the stores shared by every front-end handler.
package app

import (
	"context"

	"go.uber.org/zap"

	"finboard/internal/domain"
	"finboard/internal/notify"
	"finboard/internal/repository"
	"finboard/internal/service"
)

// Deps are the storage and transport dependencies of an App
type Deps struct {
	Credentials repository.CredentialStore
	Sessions    repository.SessionStore
	Watchlist   repository.WatchlistRepository
	Articles    repository.ArticleSource
	Metrics     *service.FetchMetrics
	Logger      *zap.Logger
}

// App is the single owner of the process-wide state. Observers subscribe to Hub.
type App struct {
	Hub        *notify.Hub
	Identity   *service.Identity
	Onboarding *service.Onboarding
	Watchlist  *service.Watchlist
	News       *service.NewsFeed

	logger *zap.Logger
}

// New wires the services together and loads the watchlist
func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := notify.NewHub()
	identity := service.NewIdentity(deps.Credentials, deps.Sessions, hub, logger.Named("identity"))

	a := &App{
		Hub:        hub,
		Identity:   identity,
		Onboarding: service.NewOnboarding(identity, hub, logger.Named("onboarding")),
		Watchlist:  service.NewWatchlist(deps.Watchlist, hub, logger.Named("watchlist")),
		News:       service.NewNewsFeed(deps.Articles, hub, deps.Metrics, logger.Named("news")),
		logger:     logger,
	}

	// signing out drops the previous user's search results
	hub.Subscribe(notify.TopicSession, func(ev notify.Event) {
		if s, ok := ev.Payload.(domain.Session); ok && !s.Active() {
			a.News.Reset()
		}
	})

	a.Watchlist.Load(ctx)
	return a
}

// SignedIn reports whether the onboarding flow is complete for an active session
func (a *App) SignedIn() bool {
	return a.Identity.Session().Active()
}

// Close detaches the stores from the hub
func (a *App) Close() {
	a.Onboarding.Close()
}
