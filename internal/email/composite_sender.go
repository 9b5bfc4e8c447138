package email

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// CompositeEmailSender delivers through one primary sender and copies every
// message to mirror senders such as the LOG_EMAILS file. Only the primary
// decides whether a send failed; mirror failures are logged.
type CompositeEmailSender struct {
	primary Sender
	mirrors []Sender
}

func NewCompositeEmailSender(primary Sender, mirrors ...Sender) *CompositeEmailSender {
	cs := &CompositeEmailSender{primary: primary}
	for _, m := range mirrors {
		cs.AddMirror(m)
	}
	return cs
}

func (cs *CompositeEmailSender) AddMirror(sender Sender) {
	if sender != nil {
		cs.mirrors = append(cs.mirrors, sender)
	}
}

func (cs *CompositeEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if cs.primary == nil {
		return errors.New("no primary email sender configured")
	}
	for _, m := range cs.mirrors {
		if err := m.Send(ctx, to, subject, rawMessage); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Strs("to", to).Msg("email mirror failed")
		}
	}
	return cs.primary.Send(ctx, to, subject, rawMessage)
}
