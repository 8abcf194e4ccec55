//go:build !windows

package notifier

import (
	"github.com/gen2brain/beeep"
)

// push uses beeep for cross-platform notifications. Buttons, click
// activation and duration have no portable equivalent and are ignored.
func push(_ string, n Notification) error {
	if n.audible() {
		// beeep.Alert includes sound on supported platforms
		return beeep.Alert(n.Title, n.Message, n.Image)
	}
	return beeep.Notify(n.Title, n.Message, n.Image)
}
