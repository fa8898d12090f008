package handler

import (
	"errors"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finboard/internal/domain"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	chatID := c.Chat().ID

	h.logger.Info("User started bot",
		zap.Int64("chat_id", chatID),
		zap.String("telegram_username", c.Sender().Username),
	)

	h.resetMode(chatID)

	if h.app.SignedIn() {
		return c.Send(mainMenuText(h.app.Identity.Session()), mainMenuMarkup())
	}

	// an abandoned flow starts over
	h.app.Onboarding.Reset()
	return h.sendOnboarding(c)
}

// handleSignUp starts the sign-up branch
func (h *Handler) handleSignUp(c tele.Context) error {
	if err := h.app.Onboarding.ChooseSignUp(); err != nil {
		return h.onboardingError(c, err)
	}
	h.resetMode(c.Chat().ID)
	return h.reply(c, onboardingText(h.app.Onboarding.View()), onboardingMarkup(h.app.Onboarding.View()))
}

// handleLogIn starts the login branch
func (h *Handler) handleLogIn(c tele.Context) error {
	if err := h.app.Onboarding.ChooseLogin(); err != nil {
		return h.onboardingError(c, err)
	}
	h.setMode(c.Chat().ID, modeLoginUsername)
	return h.reply(c, onboardingText(h.app.Onboarding.View()), onboardingMarkup(h.app.Onboarding.View()))
}

// handleContinue advances from the username step
func (h *Handler) handleContinue(c tele.Context) error {
	if err := h.app.Onboarding.Next(); err != nil {
		return h.onboardingError(c, err)
	}
	return h.afterStep(c)
}

// handleBack returns to the previous onboarding step
func (h *Handler) handleBack(c tele.Context) error {
	if err := h.app.Onboarding.Back(); err != nil {
		return h.onboardingError(c, err)
	}
	return h.afterStep(c)
}

// handleOnboardingText feeds a plain message into the onboarding step
func (h *Handler) handleOnboardingText(c tele.Context, text string) error {
	chatID := c.Chat().ID
	onboarding := h.app.Onboarding

	switch onboarding.State() {
	case domain.StateEnterUsername:
		onboarding.SetUsername(text)
		return h.sendOnboarding(c)

	case domain.StateEnterPassword:
		h.deleteSecret(c)
		if h.getMode(chatID) != modeConfirm {
			onboarding.SetPassword(text)
			if hint := onboarding.View().Hint; hint != "" {
				return c.Send("⚠️ "+hint, onboardingMarkup(onboarding.View()))
			}
			h.setMode(chatID, modeConfirm)
			return c.Send("🔁 Repeat the password.", onboardingMarkup(onboarding.View()))
		}

		onboarding.SetConfirmPassword(text)
		if !onboarding.ContinueEnabled() {
			hint := onboarding.View().Hint
			onboarding.SetPassword("")
			onboarding.SetConfirmPassword("")
			h.setMode(chatID, modePassword)
			return c.Send("⚠️ "+hint+"\n\n"+onboardingText(onboarding.View()), onboardingMarkup(onboarding.View()))
		}
		if err := onboarding.Next(); err != nil {
			return h.onboardingError(c, err)
		}
		return h.afterStep(c)

	case domain.StateLogin:
		if h.getMode(chatID) != modeLoginPassword {
			onboarding.SetUsername(text)
			h.setMode(chatID, modeLoginPassword)
			return c.Send("🔒 Now send your password.", onboardingMarkup(onboarding.View()))
		}

		h.deleteSecret(c)
		onboarding.SetPassword(text)
		if err := onboarding.Next(); err != nil {
			h.setMode(chatID, modeLoginUsername)
			return h.onboardingError(c, err)
		}
		return h.afterStep(c)

	default:
		return h.sendOnboarding(c)
	}
}

// afterStep renders the step reached by a transition
func (h *Handler) afterStep(c tele.Context) error {
	chatID := c.Chat().ID
	view := h.app.Onboarding.View()

	switch view.State {
	case domain.StateEnterPassword:
		h.setMode(chatID, modePassword)
	case domain.StateLogin:
		h.setMode(chatID, modeLoginUsername)
	case domain.StateConfirmation:
		h.resetMode(chatID)
		session := h.app.Identity.Session()
		h.logger.Info("Onboarding completed", zap.String("username", session.Username))
		return h.reply(c, onboardingText(view)+"\n\n"+mainMenuText(session), mainMenuMarkup())
	default:
		h.resetMode(chatID)
	}
	return h.reply(c, onboardingText(view), onboardingMarkup(view))
}

func (h *Handler) sendOnboarding(c tele.Context) error {
	view := h.app.Onboarding.View()
	return c.Send(onboardingText(view), onboardingMarkup(view))
}

// onboardingError explains a rejected onboarding action
func (h *Handler) onboardingError(c tele.Context, err error) error {
	view := h.app.Onboarding.View()

	var text string
	switch {
	case errors.Is(err, domain.ErrLoginFailed):
		text = "⚠️ " + view.Hint + "\n\nSend your username."
	case errors.Is(err, domain.ErrUsernameTaken):
		text = "⚠️ Username is unavailable."
	case errors.Is(err, domain.ErrTransitionBlocked), errors.Is(err, domain.ErrInvalidTransition):
		text = onboardingText(view)
	default:
		h.logger.Error("Onboarding step failed", zap.Error(err))
		text = "Something went wrong. Please try again later."
	}

	if c.Callback() != nil {
		if ackErr := c.Respond(); ackErr != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
		}
	}
	return c.Send(text, onboardingMarkup(view))
}

// deleteSecret removes a message that carried a password
func (h *Handler) deleteSecret(c tele.Context) {
	if c.Message() == nil {
		return
	}
	if err := c.Delete(); err != nil {
		h.logger.Debug("Failed to delete password message", zap.Error(err))
	}
}
