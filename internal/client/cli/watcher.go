package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/services"
)

// stateWatcher turns manager snapshots into notices for changes the user did
// not ask for at the prompt: a restored session, expiry and the expiry
// warning.
type stateWatcher struct {
	mu     sync.Mutex
	last   services.Snapshot
	notify func(string)
}

func newStateWatcher(notify func(string)) *stateWatcher {
	return &stateWatcher{
		last:   services.Snapshot{State: services.StateInitializing},
		notify: notify,
	}
}

func (w *stateWatcher) observe(s services.Snapshot) {
	w.mu.Lock()
	prev := w.last
	w.last = s
	w.mu.Unlock()

	switch {
	case prev.State == services.StateInitializing && s.State == services.StateAuthenticated:
		w.notify(fmt.Sprintf("Welcome back, %s. Session valid until %s.", displayName(s), s.ExpiresAt.Local().Format(time.DateTime)))
	case prev.State == services.StateAuthenticated && s.State == services.StateAnonymous:
		w.notify("You have been logged out.")
	case s.ExpiringSoon && !prev.ExpiringSoon && s.State == services.StateAuthenticated:
		w.notify(fmt.Sprintf("Your session expires at %s. Log in again to extend it.", s.ExpiresAt.Local().Format(time.DateTime)))
	}
}

func displayName(s services.Snapshot) string {
	if s.User == nil {
		return ""
	}
	if s.User.FullName != "" {
		return s.User.FullName
	}
	return s.User.Email
}

// formatRemaining renders d as "6d 23h 59m", dropping leading zero units.
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	d = d.Round(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
