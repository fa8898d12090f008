package handler

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// splitCallbackData separates "unique|payload" as telebot encodes button data
func splitCallbackData(data string) (unique, payload string) {
	unique, payload, _ = strings.Cut(data, "|")
	return unique, payload
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context) error {
	if err == nil {
		return nil
	}

	// Telegram rejects an edit that would not change the message
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already up to date, acknowledging",
			zap.Int64("chat_id", c.Chat().ID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("chat_id", c.Chat().ID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// reply edits the message behind a callback, or sends a new one for commands and text
func (h *Handler) reply(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		if err := c.Edit(text, markup); err != nil {
			if handleErr := h.handleEditError(err, c); handleErr == nil {
				return nil
			}
			return c.Send(text, markup)
		}
		return c.Respond()
	}
	return c.Send(text, markup)
}

// handleCallback handles callback queries no button handler claimed
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	unique, payload := splitCallbackData(data)
	if callback.Unique != "" {
		unique, payload = callback.Unique, data
	}

	h.logger.Info("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("data_raw", callback.Data),
		zap.String("id", callback.ID),
		zap.String("unique", unique),
		zap.Int64("chat_id", c.Chat().ID),
	)

	switch unique {
	case btnSignUp.Unique:
		return h.handleSignUp(c)
	case btnLogIn.Unique:
		return h.handleLogIn(c)
	case btnContinue.Unique:
		return h.handleContinue(c)
	case btnBack.Unique:
		return h.handleBack(c)
	}

	if !h.app.SignedIn() {
		return c.Respond(&tele.CallbackResponse{Text: "Please sign in first: /start"})
	}

	switch unique {
	case btnMainMenu.Unique:
		return h.handleMainMenu(c)
	case btnWatchlist.Unique:
		return h.handleWatchlist(c)
	case btnWatchAdd.Unique:
		return h.handleWatchAdd(c)
	case btnWatch.Unique:
		return h.toggleWatch(c, payload)
	case btnNews.Unique:
		return h.handleNews(c)
	case btnMore.Unique:
		return h.handleMore(c)
	case btnSignOut.Unique:
		return h.handleSignOut(c)
	case btnDelete.Unique:
		return h.handleDelete(c)
	case btnDeleteConfirm.Unique:
		return h.handleDeleteConfirm(c)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}
