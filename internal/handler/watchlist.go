package handler

import (
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleWatchlist shows the watched items
func (h *Handler) handleWatchlist(c tele.Context) error {
	h.resetMode(c.Chat().ID)
	items := h.app.Watchlist.Items()
	return h.reply(c, watchlistText(items), watchlistMarkup(items))
}

// handleWatchAdd waits for an item id to add
func (h *Handler) handleWatchAdd(c tele.Context) error {
	h.setMode(c.Chat().ID, modeWatch)

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnWatchlist))
	return h.reply(c, "➕ Send a ticker or coin id to add, for example AAPL or bitcoin.", markup)
}

// handleWatchToggle toggles the item carried by a watchlist button
func (h *Handler) handleWatchToggle(c tele.Context) error {
	return h.toggleWatch(c, c.Callback().Data)
}

func (h *Handler) toggleWatch(c tele.Context, payload string) error {
	itemID := resolveWatchPayload(cleanCallbackData(payload), h.app.Watchlist.Items())

	ctx, cancel := requestContext()
	defer cancel()

	if err := h.app.Watchlist.Toggle(ctx, itemID); err != nil {
		h.logger.Error("Failed to toggle watchlist item",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Could not update the watchlist"})
	}

	items := h.app.Watchlist.Items()
	return h.reply(c, watchlistText(items), watchlistMarkup(items))
}

// addWatchFromText adds the typed item id
func (h *Handler) addWatchFromText(c tele.Context, itemID string) error {
	if len(itemID) > maxWatchItemBytes {
		h.setMode(c.Chat().ID, modeWatch)
		return c.Send(fmt.Sprintf("⚠️ That id is too long, send at most %d bytes.", maxWatchItemBytes))
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := h.app.Watchlist.Add(ctx, itemID); err != nil {
		h.logger.Error("Failed to add watchlist item",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return c.Send("Could not update the watchlist. Please try again.")
	}

	items := h.app.Watchlist.Items()
	return c.Send(watchlistText(items), watchlistMarkup(items))
}
