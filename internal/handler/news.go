package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleNews asks for a search query
func (h *Handler) handleNews(c tele.Context) error {
	h.setMode(c.Chat().ID, modeSearch)

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))
	return h.reply(c, "📰 Send a keyword to search business news from the last week.", markup)
}

// search fetches the first page for query
func (h *Handler) search(c tele.Context, query string) error {
	ctx, cancel := requestContext()
	defer cancel()

	if !h.app.News.FetchPage(ctx, query, 1) {
		return c.Send("⏳ Still loading, try again in a moment.")
	}
	return h.sendFeed(c)
}

// handleMore loads the page after the last shown article
func (h *Handler) handleMore(c tele.Context) error {
	articles := h.app.News.Articles()
	if len(articles) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Search for something first"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	last := articles[len(articles)-1].ID
	if !h.app.News.LoadMoreIfNeeded(ctx, last, h.app.News.Query()) {
		if h.app.News.IsLoading() {
			return c.Respond(&tele.CallbackResponse{Text: "Still loading…"})
		}
		return c.Respond(&tele.CallbackResponse{Text: "That's everything"})
	}
	return h.sendFeed(c)
}

// sendFeed shows the feed and consumes its pending alert
func (h *Handler) sendFeed(c tele.Context) error {
	snap := h.app.News.Snapshot()
	if snap.Alert != "" {
		h.logger.Debug("Showing feed alert", zap.String("alert", snap.Alert))
		h.app.News.DismissAlert()
	}
	return h.reply(c, feedText(snap), feedMarkup(snap))
}
