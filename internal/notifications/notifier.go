// Package notifications delivers account messages such as the welcome mail
// sent after registration.
package notifications

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// Welcome is sent to a newly registered user.
type Welcome struct {
	UserID uint
	Email  string
}

// Notifier delivers account messages.
type Notifier interface {
	SendWelcome(ctx context.Context, msg Welcome) error
}

// LogNotifier records messages as structured log lines instead of sending
// them. It is the default when no mail provider is configured.
type LogNotifier struct {
	logg *logger.Logger
	from string
}

func NewLogNotifier(logg *logger.Logger, from string) *LogNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{logg: logg, from: from}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, msg Welcome) error {
	if msg.Email == "" {
		return fmt.Errorf("welcome recipient required")
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"user_id": msg.UserID,
		"to":      msg.Email,
		"from":    n.from,
	})
	n.logg.Info(ctx, "welcome email queued")
	return nil
}

// Noop drops every message.
type Noop struct{}

func (Noop) SendWelcome(context.Context, Welcome) error { return nil }
