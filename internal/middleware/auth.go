package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// SessionChecker reports whether a user is signed in
type SessionChecker interface {
	SignedIn() bool
}

// OwnerOnly drops updates from every Telegram user except ownerID.
// An ownerID of 0 lets everyone through.
func OwnerOnly(ownerID int64, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if ownerID == 0 {
				return next(c)
			}

			sender := c.Sender()
			if sender == nil || sender.ID != ownerID {
				var senderID int64
				if sender != nil {
					senderID = sender.ID
				}
				logger.Warn("Rejected update from foreign user", zap.Int64("user_id", senderID))
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: "This bot is private."})
				}
				return c.Send("This bot is private.")
			}

			return next(c)
		}
	}
}

// RequireSession lets an update through only while a user is signed in
func RequireSession(sessions SessionChecker, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !sessions.SignedIn() {
				logger.Debug("Update needs a session, prompting sign in")
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: "Please sign in first: /start"})
				}
				return c.Send("Please sign in first: /start")
			}

			return next(c)
		}
	}
}
