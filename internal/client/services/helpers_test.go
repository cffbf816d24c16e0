package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

const (
	week     = 7 * 24 * time.Hour
	interval = 5 * time.Minute
)

// ---- fake clock ----

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
	BlockUntil(n int)
}

// requireTickers waits until exactly n tickers are registered on clk.
func requireTickers(t *testing.T, clk fakeClock, n int) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		clk.BlockUntil(n)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected %d active ticker(s)", n)
	}
}

// ---- fake client ----

// fakeAPI implements client.Client. Nil funcs succeed with canned values.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loginFn    func(ctx context.Context, email string, password []byte) (*models.User, error)
	registerFn func(ctx context.Context, p models.Profile, password []byte) (string, error)
	requestFn  func(ctx context.Context, email string) (string, error)
	verifyFn   func(ctx context.Context, email, otp string) (*models.User, error)
	forgotFn   func(ctx context.Context, email string) (string, error)
	resetFn    func(ctx context.Context, email string, pw []byte) (string, error)
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	f.record("login")
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return &models.User{ID: "u-" + email, Email: email, FullName: "Test User"}, nil
}

func (f *fakeAPI) Register(ctx context.Context, p models.Profile, password []byte) (string, error) {
	f.record("register")
	if f.registerFn != nil {
		return f.registerFn(ctx, p, password)
	}
	return "Registered. Check your email.", nil
}

func (f *fakeAPI) RequestOTP(ctx context.Context, email string) (string, error) {
	f.record("request-otp")
	if f.requestFn != nil {
		return f.requestFn(ctx, email)
	}
	return "OTP sent", nil
}

func (f *fakeAPI) VerifyOTP(ctx context.Context, email, otp string) (*models.User, error) {
	f.record("verify-otp")
	if f.verifyFn != nil {
		return f.verifyFn(ctx, email, otp)
	}
	return &models.User{ID: "u-" + email, Email: email}, nil
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) (string, error) {
	f.record("forgot-password")
	if f.forgotFn != nil {
		return f.forgotFn(ctx, email)
	}
	return "", nil
}

func (f *fakeAPI) ResetPassword(ctx context.Context, email string, pw []byte) (string, error) {
	f.record("reset-password")
	if f.resetFn != nil {
		return f.resetFn(ctx, email, pw)
	}
	return "", nil
}

// ---- flaky store ----

var errStoreDown = errors.New("store down")

// flakyStore wraps a MemoryStore and fails the operations it is told to.
type flakyStore struct {
	*session.MemoryStore

	mu        sync.Mutex
	failGet   bool
	failSet   bool
	failDel   bool
	deletes   int
	setsTotal int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: session.NewMemoryStore()}
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return "", false, errStoreDown
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failSet
	s.setsTotal++
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	fail := s.failDel
	s.deletes++
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.Delete(ctx, key)
}

func (s *flakyStore) set(f func(s *flakyStore)) {
	s.mu.Lock()
	f(s)
	s.mu.Unlock()
}

func (s *flakyStore) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

func (s *flakyStore) raw(t *testing.T) (string, bool) {
	t.Helper()
	v, ok, err := s.MemoryStore.Get(context.Background(), common.SessionStoreKey)
	require.NoError(t, err)
	return v, ok
}

// ---- recorder ----

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.snaps))
	for _, s := range r.snaps {
		out = append(out, s.State)
	}
	return out
}

func (r *recorder) Last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return Snapshot{}
	}
	return r.snaps[len(r.snaps)-1]
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

// ---- harness ----

type harness struct {
	m     *SessionManager
	api   *fakeAPI
	store *flakyStore
	clk   fakeClock
	rec   *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, newFlakyStore(), clockwork.NewFakeClockAt(start))
}

func newHarnessWith(t *testing.T, store *flakyStore, clk fakeClock) *harness {
	t.Helper()
	h := &harness{
		api:   &fakeAPI{},
		store: store,
		clk:   clk,
		rec:   &recorder{},
	}
	h.m = NewSessionManager(h.api, store, Options{
		Clock:           clk,
		SessionDuration: week,
		CheckInterval:   interval,
		WarningWindow:   24 * time.Hour,
	})
	h.m.Subscribe(h.rec.observe)
	t.Cleanup(h.m.Close)
	return h
}

func seedRecord(t *testing.T, s *flakyStore, user models.User, issued time.Time) {
	t.Helper()
	raw, err := models.NewSessionRecord(user, issued).Marshal()
	require.NoError(t, err)
	require.NoError(t, s.MemoryStore.Set(context.Background(), common.SessionStoreKey, raw))
}

func (h *harness) login(t *testing.T, email string) {
	t.Helper()
	res := h.m.Login(context.Background(), email, []byte("pw"))
	require.True(t, res.Success, res.Error)
}
