// Package notify shows desktop notifications for finished runs.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// AppName is shown by notification daemons that display a sender.
const AppName = "docnamer"

type Notifier interface {
	// Notify shows a notification; sound requests an audible alert.
	Notify(title, message string, sound bool) error
}

// Desktop notifies through the operating system's notification service.
type Desktop struct {
	logger *slog.Logger
	notify func(title, message string, icon any) error
	alert  func(title, message string, icon any) error
}

func NewDesktop(logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	beeep.AppName = AppName
	return &Desktop{logger: logger, notify: beeep.Notify, alert: beeep.Alert}
}

func (d *Desktop) Notify(title, message string, sound bool) error {
	send := d.notify
	if sound {
		send = d.alert
	}
	if err := send(title, message, ""); err != nil {
		d.logger.Warn("notify.desktop.failed", "title", title, "error", err)
		return err
	}
	d.logger.Debug("notify.desktop.sent", "title", title)
	return nil
}

// Noop discards notifications, used in silent mode.
type Noop struct{}

func (Noop) Notify(string, string, bool) error { return nil }
