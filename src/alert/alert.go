// Package alert shows blocking, user-visible messages for validation
// reports from the graphics driver.
package alert

import "log/slog"

// Logger receives every alert in addition to the platform dialog.
var Logger = slog.Default()

// Show displays message under title and blocks until the user dismisses it.
// On platforms without a native dialog the message is only logged.
func Show(title, message string) {
	Logger.Error(message, "source", title)
	show(title, message)
}
