package handler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finboard/internal/app"
	"finboard/internal/middleware"
)

const requestTimeout = 15 * time.Second

// inputMode tells handleText what the next plain message means
type inputMode int

const (
	modeNone inputMode = iota
	modePassword
	modeConfirm
	modeLoginUsername
	modeLoginPassword
	modeSearch
	modeWatch
)

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	app    *app.App
	logger *zap.Logger

	// Per-chat input modes
	modes   map[int64]inputMode
	modeMux sync.RWMutex
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, a *app.App, logger *zap.Logger) *Handler {
	return &Handler{
		bot:    bot,
		app:    a,
		logger: logger,
		modes:  make(map[int64]inputMode),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Onboarding buttons
	h.bot.Handle(&btnSignUp, h.handleSignUp)
	h.bot.Handle(&btnLogIn, h.handleLogIn)
	h.bot.Handle(&btnContinue, h.handleContinue)
	h.bot.Handle(&btnBack, h.handleBack)

	// Buttons that need a signed-in user
	signedIn := h.bot.Group()
	signedIn.Use(middleware.RequireSession(h.app, h.logger))
	signedIn.Handle(&btnMainMenu, h.handleMainMenu)
	signedIn.Handle(&btnWatchlist, h.handleWatchlist)
	signedIn.Handle(&btnWatchAdd, h.handleWatchAdd)
	signedIn.Handle(&btnWatch, h.handleWatchToggle)
	signedIn.Handle(&btnNews, h.handleNews)
	signedIn.Handle(&btnMore, h.handleMore)
	signedIn.Handle(&btnSignOut, h.handleSignOut)
	signedIn.Handle(&btnDelete, h.handleDelete)
	signedIn.Handle(&btnDeleteConfirm, h.handleDeleteConfirm)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// getMode returns the chat's current input mode
func (h *Handler) getMode(chatID int64) inputMode {
	h.modeMux.RLock()
	defer h.modeMux.RUnlock()
	return h.modes[chatID]
}

// setMode sets the chat's input mode
func (h *Handler) setMode(chatID int64, mode inputMode) {
	h.modeMux.Lock()
	defer h.modeMux.Unlock()
	h.modes[chatID] = mode
}

// resetMode drops the chat back to no pending input
func (h *Handler) resetMode(chatID int64) {
	h.setMode(chatID, modeNone)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// Inline keyboard buttons
var (
	btnSignUp = tele.Btn{
		Unique: "signup",
		Text:   "📝 Sign up",
	}
	btnLogIn = tele.Btn{
		Unique: "login",
		Text:   "🔑 Log in",
	}
	btnContinue = tele.Btn{
		Unique: "continue",
		Text:   "➡️ Continue",
	}
	btnBack = tele.Btn{
		Unique: "back",
		Text:   "⬅️ Back",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
	btnWatchlist = tele.Btn{
		Unique: "watchlist",
		Text:   "⭐ Watchlist",
	}
	btnWatchAdd = tele.Btn{
		Unique: "watch_add",
		Text:   "➕ Add item",
	}
	btnWatch = tele.Btn{
		Unique: "watch",
	}
	btnNews = tele.Btn{
		Unique: "news",
		Text:   "📰 News",
	}
	btnMore = tele.Btn{
		Unique: "more",
		Text:   "⬇️ More",
	}
	btnSignOut = tele.Btn{
		Unique: "signout",
		Text:   "🚪 Sign out",
	}
	btnDelete = tele.Btn{
		Unique: "delete",
		Text:   "🗑 Delete account",
	}
	btnDeleteConfirm = tele.Btn{
		Unique: "delete_confirm",
		Text:   "⚠️ Yes, delete",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnWatchlist, btnNews),
		menu.Row(btnSignOut),
		menu.Row(btnDelete),
	)
	return menu
}
