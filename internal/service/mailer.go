package service

import (
	"context"
	"fmt"

	"bugscape/internal/logging"
	"bugscape/internal/model"
)

const mailFrom = "noreply@bugscape.net"

// Mail is an outgoing message.
type Mail struct {
	From    string
	To      string
	Subject string
	Text    string
}

// Mailer delivers mail.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// LogMailer writes mail to the event log instead of delivering it.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.Info(ctx, "mail queued", "from", mail.From, "to", mail.To, "subject", mail.Subject, "text", mail.Text)
	return nil
}

func verificationMail(u *model.User, baseURL string) Mail {
	return Mail{
		From:    mailFrom,
		To:      u.Email,
		Subject: "Please verify your account",
		Text: fmt.Sprintf("Hi %s,\n\nThank you for signing up to Bugscape!\nBefore you get started please verify your account.\n\n"+
			"Verification code: %s\n\nClick the link below to verify your account:\n\n%s/verify?id=%s&code=%s",
			u.FirstName, u.VerificationCode, baseURL, u.ID, u.VerificationCode),
	}
}

func passwordResetMail(u *model.User) Mail {
	return Mail{
		From:    mailFrom,
		To:      u.Email,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Password reset code: %s\nUser ID: %s", *u.PasswordResetCode, u.ID),
	}
}
