package notifier

import (
	"errors"
	"fmt"
	"strings"
)

// Audio cues accepted by --audio. Platforms without named sounds treat any
// cue other than silent as a request for an audible alert.
var Audio = []string{"default", "im", "mail", "reminder", "sms", "silent"}

// Notification is a single desktop notification
type Notification struct {
	Title   string
	Message string
	// Image is a path to an image shown as the notification icon
	Image string
	// Audio names one of the Audio cues; empty uses the platform default
	Audio string
	// Sound requests an audible alert where named cues are not available
	Sound bool
	// Duration is "short" or "long"; empty uses the platform default
	Duration string
	// Open is a URL launched when the notification body is clicked
	Open    string
	Buttons []Button
}

// Button is an action button that opens URL when clicked
type Button struct {
	Label string
	URL   string
}

// ParseButton parses a "label=url" flag value
func ParseButton(s string) (Button, error) {
	label, url, ok := strings.Cut(s, "=")
	label = strings.TrimSpace(label)
	url = strings.TrimSpace(url)
	if !ok || label == "" || url == "" {
		return Button{}, fmt.Errorf("invalid button %q: want label=url", s)
	}
	return Button{Label: label, URL: url}, nil
}

// Validate checks the notification before it is handed to the OS
func (n Notification) Validate() error {
	if strings.TrimSpace(n.Message) == "" {
		return errors.New("message is required")
	}
	if n.Audio != "" && !contains(Audio, n.Audio) {
		return fmt.Errorf("unknown audio %q (available: %s)", n.Audio, strings.Join(Audio, ", "))
	}
	switch n.Duration {
	case "", "short", "long":
	default:
		return fmt.Errorf("unknown duration %q: want short or long", n.Duration)
	}
	return nil
}

func (n Notification) audible() bool {
	return n.Sound || (n.Audio != "" && n.Audio != "silent")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Sender delivers notifications
type Sender interface {
	Send(n Notification) error
}

// Notifier handles desktop notifications
type Notifier struct {
	appID   string
	enabled bool
	push    func(appID string, n Notification) error
}

// New creates a new Notifier registered under appID
func New(appID string) *Notifier {
	return &Notifier{
		appID:   appID,
		enabled: true,
		push:    push,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Send validates and shows a desktop notification
func (n *Notifier) Send(nt Notification) error {
	if err := nt.Validate(); err != nil {
		return err
	}
	if !n.enabled {
		return nil
	}
	if err := n.push(n.appID, nt); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}
