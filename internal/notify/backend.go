package notify

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/logging"
)

// Backend delivers notifications to the operating system.
type Backend interface {
	// Show renders a notification.
	Show(n Notification) error

	// Close dismisses a notification by its namespaced key.
	Close(key string) error

	// CloseAll dismisses every notification shown by this process.
	CloseAll() error
}

// NewBackend creates the backend named in the configuration.
func NewBackend(name, appName string) (Backend, error) {
	switch name {
	case "desktop":
		return NewExecBackend(appName), nil
	case "none":
		return NopBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", name)
	}
}

// ExecBackend delivers notifications with notify-send. The tool has no
// dismiss handle, so Close and CloseAll are best-effort no-ops; the
// Center still keeps visibility bookkeeping exact.
type ExecBackend struct {
	appName string
	log     zerolog.Logger
}

// NewExecBackend creates a notify-send backed notifier.
func NewExecBackend(appName string) *ExecBackend {
	return &ExecBackend{
		appName: appName,
		log:     logging.Component("notify-exec"),
	}
}

// Show renders a notification via notify-send.
func (b *ExecBackend) Show(n Notification) error {
	args := []string{"--app-name", b.appName}
	if n.IconPath != "" {
		args = append(args, "--icon", n.IconPath)
	}
	args = append(args, n.Title, n.Body)

	if err := exec.Command("notify-send", args...).Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	b.log.Debug().Str("kind", string(n.Kind)).Str("key", n.Key).Msg("notification shown")
	return nil
}

// Close is a no-op; notify-send offers no dismissal handle.
func (b *ExecBackend) Close(key string) error {
	return nil
}

// CloseAll is a no-op; notify-send offers no dismissal handle.
func (b *ExecBackend) CloseAll() error {
	return nil
}

// NopBackend discards all notifications. Used for tests and when
// delivery is disabled in configuration.
type NopBackend struct{}

func (NopBackend) Show(n Notification) error { return nil }
func (NopBackend) Close(key string) error { return nil }
func (NopBackend) CloseAll() error { return nil }
