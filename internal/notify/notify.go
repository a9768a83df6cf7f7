// Package notify delivers desktop notifications for messages received
// while another conversation is active.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

type DesktopNotifier struct {
	log zerolog.Logger
}

func NewDesktopNotifier(logger zerolog.Logger) *DesktopNotifier {
	return &DesktopNotifier{log: logger}
}

// Notify is best-effort. Notification daemons are frequently absent on
// headless systems.
func (n *DesktopNotifier) Notify(title, body string) {
	if err := beeep.Notify(title, body, ""); err != nil {
		n.log.Debug().Err(err).Msg("desktop notification failed")
	}
}
