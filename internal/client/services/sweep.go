package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/jonboulle/clockwork"
)

// Init restores a persisted session. An absent, unreadable, malformed or
// expired record leaves the manager Anonymous; the last three are also
// removed from the store. Init never fails.
func (m *SessionManager) Init(ctx context.Context) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	rec, ok := m.loadRecord(ctx)

	m.mu.Lock()
	m.initialized = true
	if ok {
		m.user = rec.User
		m.expiresAt = rec.ExpiresAt(m.duration)
		m.expiringSoon = m.inWarningWindow(m.expiresAt.Sub(m.clock.Now()))
		m.armLocked()
	}
	m.mu.Unlock()

	if ok {
		m.log.Info(ctx, "session restored", "email", rec.User.Email, "expires_at", rec.ExpiresAt(m.duration))
	}
	m.publish()
}

func (m *SessionManager) loadRecord(ctx context.Context) (models.SessionRecord, bool) {
	raw, found, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.log.Warn(ctx, "failed to read persisted session", "error", err)
		m.discard(ctx)
		return models.SessionRecord{}, false
	}
	if !found {
		return models.SessionRecord{}, false
	}

	rec, err := models.ParseSessionRecord(raw)
	if err != nil {
		m.log.Warn(ctx, "discarding malformed session record", "error", err)
		m.discard(ctx)
		return models.SessionRecord{}, false
	}

	if rec.Expired(m.clock.Now(), m.duration) {
		m.log.Info(ctx, "persisted session expired", "email", rec.User.Email)
		m.discard(ctx)
		return models.SessionRecord{}, false
	}
	return rec, true
}

func (m *SessionManager) discard(ctx context.Context) {
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.log.Warn(ctx, "failed to delete persisted session", "error", err)
	}
}

// inWarningWindow reports whether remaining is close enough to expiry to
// warn the user.
func (m *SessionManager) inWarningWindow(remaining time.Duration) bool {
	return m.warningWindow > 0 && remaining > 0 && remaining <= m.warningWindow
}

// shouldWarn limits the expiry warning to the first hour inside the window.
// A window of an hour or less warns once, on entry.
func (m *SessionManager) shouldWarn(remaining time.Duration, entered bool) bool {
	if m.warningWindow <= time.Hour {
		return entered
	}
	return remaining > m.warningWindow-time.Hour
}

// armLocked replaces any running sweep with a fresh one. Callers hold mu.
func (m *SessionManager) armLocked() {
	m.disarmLocked()
	if m.closed {
		return
	}

	m.gen++
	m.ticker = m.clock.NewTicker(m.interval)
	m.stop = make(chan struct{})
	go m.sweepLoop(m.gen, m.ticker, m.stop)
}

// disarmLocked stops the running sweep, if any, without waiting for its
// goroutine, which may be the caller. Callers hold mu.
func (m *SessionManager) disarmLocked() {
	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	close(m.stop)
	m.ticker = nil
	m.stop = nil
}

func (m *SessionManager) sweepLoop(gen uint64, t clockwork.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			m.sweep(gen)
		}
	}
}

// sweep re-checks the remaining session time. A sweep whose generation is
// no longer current does nothing.
func (m *SessionManager) sweep(gen uint64) {
	ctx := context.Background()

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	m.mu.Lock()
	if gen != m.gen || m.user == nil {
		m.mu.Unlock()
		return
	}
	email := m.user.Email
	remaining := m.expiresAt.Sub(m.clock.Now())

	if remaining <= 0 {
		m.mu.Unlock()
		m.log.Info(ctx, "session expired, logging out", "email", email)
		m.clearSession(ctx)
		return
	}

	soon := m.inWarningWindow(remaining)
	changed := soon != m.expiringSoon
	m.expiringSoon = soon
	m.mu.Unlock()

	if soon && m.shouldWarn(remaining, changed) {
		m.log.Warn(ctx, "session expires soon", "email", email, "remaining", remaining.Round(time.Second))
	}
	if changed {
		m.publish()
	}
}
