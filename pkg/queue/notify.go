package queue

import (
	"context"
	"fmt"
)

type WebhookMessager interface {
	Notify(ctx context.Context, message string) error
	NotifyWarning(ctx context.Context, errorMessage error) error
	NotifyError(ctx context.Context, errorMessage error) error
}

// warning marks a queued error that did not fail anything
type warning struct {
	err error
}

// Notifier hands notifications to a queue so callers never wait on delivery
type Notifier struct {
	s *Service
}

func NewNotifier(s *Service) *Notifier {
	return &Notifier{s}
}

func (n *Notifier) Notify(ctx context.Context, message string) error {
	return n.s.Enqueue(*NewMessage(message))
}

func (n *Notifier) NotifyWarning(ctx context.Context, errorMessage error) error {
	return n.s.Enqueue(*NewMessage(warning{errorMessage}))
}

func (n *Notifier) NotifyError(ctx context.Context, errorMessage error) error {
	return n.s.Enqueue(*NewMessage(errorMessage))
}

// Deliver returns a Processor posting queued notifications to wm
func Deliver(wm WebhookMessager) Processor {
	return ProcessorFunc(func(ctx context.Context, m Message) error {
		switch v := m.Message.(type) {
		case string:
			return wm.Notify(ctx, v)
		case warning:
			return wm.NotifyWarning(ctx, v.err)
		case error:
			return wm.NotifyError(ctx, v)
		}

		return fmt.Errorf("unsupported message %s of type %T", m.ID, m.Message)
	})
}
