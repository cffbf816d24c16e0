package services

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultSessionDuration = 7 * 24 * time.Hour
	DefaultCheckInterval   = 5 * time.Minute
	DefaultWarningWindow   = 24 * time.Hour
)

// State is the authentication state shown to the view.
type State string

const (
	StateInitializing  State = "initializing"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateAwaitingOTP   State = "awaiting_otp"
)

// Snapshot is an immutable copy of the manager state.
type Snapshot struct {
	State              State
	User               *models.User
	Loading            bool
	ExpiresAt          time.Time
	PendingEmail       string
	IsRegistrationFlow bool
	ExpiringSoon       bool
}

// Result is what every operation returns. Failures are reported through
// Success=false and a human-readable Error, never as Go errors.
type Result struct {
	Success     bool
	Error       string
	Message     string
	RequiresOTP bool
	Email       string
}

// Options configures a SessionManager. Zero values fall back to defaults.
type Options struct {
	Clock           clockwork.Clock
	Logger          logging.Logger
	SessionDuration time.Duration
	CheckInterval   time.Duration
	// WarningWindow is how long before expiry ExpiringSoon turns on.
	// Zero disables the warning.
	WarningWindow time.Duration
	StoreKey      string
}

// SessionManager owns the client's authentication state.
type SessionManager struct {
	api   client.Client
	store session.Store
	clock clockwork.Clock
	log   logging.Logger

	duration      time.Duration
	interval      time.Duration
	warningWindow time.Duration
	key           string

	// commitMu serializes units of "durable write, then publish".
	commitMu sync.Mutex
	// notifyMu keeps deliveries to subscribers in publish order.
	notifyMu sync.Mutex

	mu           sync.Mutex
	initialized  bool
	user         *models.User
	expiresAt    time.Time
	expiringSoon bool
	pendingEmail string
	registration bool
	inFlight     int
	subs         map[int]func(Snapshot)
	nextSubID    int

	ticker clockwork.Ticker
	stop   chan struct{}
	gen    uint64
	closed bool
}

// NewSessionManager constructs a manager in the Initializing state. Call Init
// to restore a persisted session.
func NewSessionManager(api client.Client, store session.Store, opts Options) *SessionManager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = DefaultSessionDuration
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.WarningWindow < 0 {
		opts.WarningWindow = 0
	}
	if opts.StoreKey == "" {
		opts.StoreKey = common.SessionStoreKey
	}

	return &SessionManager{
		api:           api,
		store:         store,
		clock:         opts.Clock,
		log:           opts.Logger.With("component", "session"),
		duration:      opts.SessionDuration,
		interval:      opts.CheckInterval,
		warningWindow: opts.WarningWindow,
		key:           opts.StoreKey,
		subs:          make(map[int]func(Snapshot)),
	}
}

// SessionDuration returns the configured session lifetime.
func (m *SessionManager) SessionDuration() time.Duration {
	return m.duration
}

// RemainingSessionTime returns max(0, expiry-now), or 0 without a session.
func (m *SessionManager) RemainingSessionTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return 0
	}
	return max(0, m.expiresAt.Sub(m.clock.Now()))
}

// Snapshot returns the current state.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to receive every published Snapshot and returns a
// function that removes it. fn runs synchronously on the publishing
// goroutine; it must not block and must not call manager operations other
// than Snapshot, RemainingSessionTime and SessionDuration.
func (m *SessionManager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Close stops the expiry sweep. The manager must not be used afterwards.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.disarmLocked()
}

func (m *SessionManager) snapshotLocked() Snapshot {
	s := Snapshot{
		Loading:            m.inFlight > 0 || !m.initialized,
		PendingEmail:       m.pendingEmail,
		IsRegistrationFlow: m.registration,
	}

	switch {
	case !m.initialized:
		s.State = StateInitializing
	case m.user != nil:
		s.State = StateAuthenticated
	case m.pendingEmail != "":
		s.State = StateAwaitingOTP
	default:
		s.State = StateAnonymous
	}

	if m.user != nil {
		u := *m.user
		s.User = &u
		s.ExpiresAt = m.expiresAt
		s.ExpiringSoon = m.expiringSoon
	}
	return s
}

// publish delivers the current state to every subscriber.
func (m *SessionManager) publish() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	snap := m.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// begin and end bracket an API call so Loading stays true while at least one
// call is in flight.
func (m *SessionManager) begin() {
	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()
	m.publish()
}

func (m *SessionManager) end() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
	m.publish()
}
