package handler

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finboard/internal/domain"
)

// handleText handles all text messages based on session and input mode
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}

	if !h.app.SignedIn() {
		return h.handleOnboardingText(c, text)
	}

	switch h.getMode(c.Chat().ID) {
	case modeWatch:
		h.resetMode(c.Chat().ID)
		return h.addWatchFromText(c, text)
	default:
		// any other text is a news search
		return h.search(c, text)
	}
}

// handleMainMenu shows the main menu
func (h *Handler) handleMainMenu(c tele.Context) error {
	h.resetMode(c.Chat().ID)
	return h.reply(c, mainMenuText(h.app.Identity.Session()), mainMenuMarkup())
}

// handleSignOut ends the session
func (h *Handler) handleSignOut(c tele.Context) error {
	h.resetMode(c.Chat().ID)
	h.app.Identity.SignOut()
	return h.reply(c, onboardingText(h.app.Onboarding.View()), onboardingMarkup(h.app.Onboarding.View()))
}

// handleDelete asks for confirmation before deleting the account
func (h *Handler) handleDelete(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnDeleteConfirm), markup.Row(btnMainMenu))

	text := "🗑 Delete the account " + h.app.Identity.Session().Username + "?\n\nThis cannot be undone."
	return h.reply(c, text, markup)
}

// handleDeleteConfirm deletes the signed-in account
func (h *Handler) handleDeleteConfirm(c tele.Context) error {
	h.resetMode(c.Chat().ID)

	if err := h.app.Identity.DeleteAccount(); err != nil {
		if errors.Is(err, domain.ErrNotSignedIn) {
			return c.Respond(&tele.CallbackResponse{Text: "Please sign in first: /start"})
		}
		h.logger.Error("Failed to delete account", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{
			Text:      "Could not delete the account. Please try again later.",
			ShowAlert: true,
		})
	}

	view := h.app.Onboarding.View()
	return h.reply(c, "Account deleted.\n\n"+onboardingText(view), onboardingMarkup(view))
}
