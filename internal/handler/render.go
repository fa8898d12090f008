package handler

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"finboard/internal/domain"
	"finboard/internal/service"
)

const (
	articleDateLayout = "Jan 2, 15:04"
	// a message holds at most 4096 characters
	maxShownArticles = 15
	// Telegram limit for callback data, encoded by telebot as "\f<unique>|<data>"
	maxCallbackData = 64
)

// maxWatchItemBytes is the longest item id that fits a watch button as is
var maxWatchItemBytes = maxCallbackData - len("\f|") - len(btnWatch.Unique)

// watchPayload is the callback data for itemID. Ids too long for a button are
// replaced by a short digest that resolveWatchPayload maps back.
func watchPayload(itemID string) string {
	if len(itemID) <= maxWatchItemBytes {
		return itemID
	}
	sum := sha1.Sum([]byte(itemID))
	return "#" + hex.EncodeToString(sum[:8])
}

// resolveWatchPayload finds the watched item a button payload stands for
func resolveWatchPayload(payload string, items []string) string {
	for _, id := range items {
		if watchPayload(id) == payload {
			return id
		}
	}
	return payload
}

// onboardingText is the prompt for the current onboarding step
func onboardingText(view domain.OnboardingView) string {
	var b strings.Builder

	switch view.State {
	case domain.StateWelcome:
		b.WriteString("👋 Welcome to Finboard!\n\n")
		b.WriteString("Keep a watchlist and follow the latest business news.\n")
		b.WriteString("Sign up or log in to continue.")

	case domain.StateEnterUsername:
		b.WriteString("📝 Choose a username (3-16 letters, digits or _).")
		if view.Username != "" {
			fmt.Fprintf(&b, "\n\nUsername: %s", view.Username)
			if view.ContinueEnabled {
				b.WriteString("\n✅ Available")
			}
		}

	case domain.StateEnterPassword:
		b.WriteString("🔒 Choose a password (at least 6 characters).")

	case domain.StateLogin:
		b.WriteString("🔑 Log in\n\nSend your username.")

	case domain.StateConfirmation:
		b.WriteString("✅ You're in!")
	}

	if view.Hint != "" {
		fmt.Fprintf(&b, "\n\n⚠️ %s", view.Hint)
	}
	return b.String()
}

// onboardingMarkup returns the buttons for the current onboarding step
func onboardingMarkup(view domain.OnboardingView) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	switch view.State {
	case domain.StateWelcome:
		markup.Inline(markup.Row(btnSignUp, btnLogIn))
	case domain.StateEnterUsername:
		if view.ContinueEnabled {
			markup.Inline(markup.Row(btnBack, btnContinue))
		} else {
			markup.Inline(markup.Row(btnBack))
		}
	case domain.StateEnterPassword, domain.StateLogin:
		markup.Inline(markup.Row(btnBack))
	case domain.StateConfirmation:
		return mainMenuMarkup()
	}
	return markup
}

// mainMenuText greets the signed-in user
func mainMenuText(session domain.Session) string {
	text := fmt.Sprintf("🏠 Main menu\n\nSigned in as %s", session.Username)
	if session.JoinDate != "" {
		text += fmt.Sprintf(" (member since %s)", session.JoinDate)
	}
	return text + "\n\nChoose an action:"
}

// watchlistText lists the watched items
func watchlistText(items []string) string {
	if len(items) == 0 {
		return "⭐ Your watchlist is empty.\n\nAdd a ticker or coin id to follow it."
	}
	return fmt.Sprintf("⭐ Your watchlist (%d):\n\nTap an item to remove it.", len(items))
}

// watchlistMarkup has one remove button per item
func watchlistMarkup(items []string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(items)+2)

	for _, id := range items {
		rows = append(rows, markup.Row(markup.Data("❌ "+id, btnWatch.Unique, watchPayload(id))))
	}
	rows = append(rows, markup.Row(btnWatchAdd))
	rows = append(rows, markup.Row(btnMainMenu))

	markup.Inline(rows...)
	return markup
}

// feedText renders the accumulated articles and any pending alert
func feedText(snap service.FeedSnapshot) string {
	var b strings.Builder

	if snap.Alert != "" {
		fmt.Fprintf(&b, "⚠️ %s\n\n", snap.Alert)
	}
	if len(snap.Articles) == 0 {
		if snap.Alert == "" {
			fmt.Fprintf(&b, "📰 Nothing found for \"%s\".", snap.Query)
		}
		return strings.TrimSpace(b.String())
	}

	fmt.Fprintf(&b, "📰 \"%s\" (%d of %d)\n", snap.Query, len(snap.Articles), snap.TotalFound)
	first := 0
	if len(snap.Articles) > maxShownArticles {
		first = len(snap.Articles) - maxShownArticles
	}
	for i := first; i < len(snap.Articles); i++ {
		a := snap.Articles[i]
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, a.Title)
		meta := make([]string, 0, 2)
		if a.Source != "" {
			meta = append(meta, a.Source)
		}
		if !a.PublishedAt.IsZero() {
			meta = append(meta, a.PublishedAt.UTC().Format(articleDateLayout))
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "%s\n", strings.Join(meta, " · "))
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "%s\n", a.URL)
		}
	}
	return strings.TrimSpace(b.String())
}

// feedMarkup offers the next page while the source reports more articles
func feedMarkup(snap service.FeedSnapshot) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	if len(snap.Articles) > 0 && len(snap.Articles) < snap.TotalFound {
		markup.Inline(markup.Row(btnMore), markup.Row(btnMainMenu))
	} else {
		markup.Inline(markup.Row(btnMainMenu))
	}
	return markup
}
