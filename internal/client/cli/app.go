package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// sessionManager is the part of services.SessionManager the CLI drives.
type sessionManager interface {
	Init(ctx context.Context)
	Close()
	Login(ctx context.Context, email string, password []byte) services.Result
	Register(ctx context.Context, profile models.Profile, password []byte) services.Result
	RequestOTP(ctx context.Context, email string) services.Result
	VerifyOTP(ctx context.Context, email, otp string, isRegistration bool) services.Result
	ForgotPassword(ctx context.Context, email string) services.Result
	VerifyResetCode(ctx context.Context, email, otp string) services.Result
	ResetPassword(ctx context.Context, email string, newPassword []byte) services.Result
	CancelOTPFlow()
	Logout(ctx context.Context) services.Result
	RemainingSessionTime() time.Duration
	SessionDuration() time.Duration
	Snapshot() services.Snapshot
	Subscribe(fn func(services.Snapshot)) func()
}

type App struct {
	config  *config.Config
	log     logging.Logger
	manager sessionManager
	closers []func() error
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires logging, the session store selected by c.StoreDriver, the
// Auth API client and the session manager.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(c.LogLevel, os.Stderr)

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		logger.Error(ctx, "error initializing session store", "driver", c.StoreDriver, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)

	m := services.NewSessionManager(api, store, services.Options{
		Logger:          logger,
		SessionDuration: c.SessionDuration,
		CheckInterval:   c.SessionCheckInterval,
		WarningWindow:   c.ExpiryWarningWindow,
	})

	return &App{
		config:  c,
		log:     logger,
		manager: m,
		closers: []func() error{api.Close, closeStore},
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores any saved session, then serves the REPL until the user exits
// or stdin closes.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	w := newStateWatcher(a.printAsync)
	unsubscribe := a.manager.Subscribe(w.observe)
	defer unsubscribe()

	a.manager.Init(ctx)

	printlnFn("Welcome to authkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) close() {
	a.manager.Close()
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn(context.Background(), "error during shutdown", "error", err)
	}
}

// printAsync prints a notice from a state change that may arrive while the
// prompt is waiting for input.
func (a *App) printAsync(msg string) {
	printlnFn("\n* " + msg)
}

func (a *App) isLoggedIn() bool {
	return a.manager.Snapshot().State == services.StateAuthenticated
}

func (a *App) status() string {
	s := a.manager.Snapshot()
	switch s.State {
	case services.StateAuthenticated:
		return fmt.Sprintf("(%s, %s left)", s.User.Email, formatRemaining(a.manager.RemainingSessionTime()))
	case services.StateAwaitingOTP:
		return fmt.Sprintf("(awaiting code for %s)", s.PendingEmail)
	default:
		return ""
	}
}
