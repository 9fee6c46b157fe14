package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envio de correos de confirmacion de email.
type Sender interface {
	SendEmailConfirmation(ctx context.Context, toEmail, fullName, token string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendEmailConfirmation(_ context.Context, _, _, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
