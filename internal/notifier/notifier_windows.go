//go:build windows

package notifier

import (
	"path/filepath"

	"github.com/go-toast/toast"
)

// push shows a Windows toast. The toast icon must be an absolute path.
func push(appID string, n Notification) error {
	t := toast.Notification{
		AppID:   appID,
		Title:   n.Title,
		Message: n.Message,
	}

	if n.Image != "" {
		if abs, err := filepath.Abs(n.Image); err == nil {
			t.Icon = abs
		}
	}

	switch n.Audio {
	case "default":
		t.Audio = toast.Default
	case "im":
		t.Audio = toast.IM
	case "mail":
		t.Audio = toast.Mail
	case "reminder":
		t.Audio = toast.Reminder
	case "sms":
		t.Audio = toast.SMS
	case "silent":
		t.Audio = toast.Silent
	case "":
		if n.Sound {
			t.Audio = toast.Default
		}
	}

	switch n.Duration {
	case "short":
		t.Duration = "short"
	case "long":
		t.Duration = "long"
	}

	if n.Open != "" {
		t.ActivationType = "protocol"
		t.ActivationArguments = n.Open
	}
	for _, b := range n.Buttons {
		t.Actions = append(t.Actions, toast.Action{Type: "protocol", Label: b.Label, Arguments: b.URL})
	}

	return t.Push()
}
