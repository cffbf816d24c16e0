package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/client/validate"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// getSimpleText, getPassword and getCode are indirections used to facilitate
// testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getCode       = GetCode
)

// errCommandFailed marks a command whose Result was unsuccessful. The
// message has already been shown.
var errCommandFailed = errors.New("command failed")

func (a *App) ask(prompt string) (string, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

func (a *App) report(res services.Result) error {
	if !res.Success {
		printlnFn("Error:", res.Error)
		return errCommandFailed
	}
	if res.Message != "" {
		printlnFn(res.Message)
	}
	return nil
}

// Register prompts for the profile, password and confirmation, creates the
// account and then asks for the verification code.
func (a *App) Register(ctx context.Context) error {
	var (
		p   models.Profile
		err error
	)
	if p.FullName, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if p.Phone, err = getSimpleText(a.reader, "Phone number", a.out); err != nil {
		return err
	}
	if p.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if p.Professional, err = getSimpleText(a.reader, "Professional field", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := validate.Registration(p, password, confirm); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	res := a.manager.Register(ctx, p, password)
	if err := a.report(res); err != nil {
		return err
	}
	return a.enterCode(ctx, res.Email, true)
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.report(a.manager.Login(ctx, email, password))
}

// VerifyOTP completes the pending OTP flow. Without one it starts a
// passwordless login: it asks for the email and requests a code first.
func (a *App) VerifyOTP(ctx context.Context) error {
	s := a.manager.Snapshot()
	if s.PendingEmail != "" {
		return a.enterCode(ctx, s.PendingEmail, s.IsRegistrationFlow)
	}

	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	res := a.manager.RequestOTP(ctx, email)
	if err := a.report(res); err != nil {
		return err
	}
	return a.enterCode(ctx, res.Email, false)
}

func (a *App) enterCode(ctx context.Context, email string, isRegistration bool) error {
	code, err := getCode(a.reader, fmt.Sprintf("Enter the 6-digit code sent to %s (empty to do it later)", email), a.out)
	if err != nil {
		return err
	}
	if code == "" {
		printlnFn("Use 'otp' to enter the code, 'resend' for a new one or 'cancel' to stop.")
		return nil
	}
	return a.report(a.manager.VerifyOTP(ctx, email, code, isRegistration))
}

// Resend requests a new code for the pending flow.
func (a *App) Resend(ctx context.Context) error {
	s := a.manager.Snapshot()
	if s.PendingEmail == "" {
		printlnFn("Nothing to resend. Use 'otp' to sign in with a code.")
		return nil
	}
	return a.report(a.manager.RequestOTP(ctx, s.PendingEmail))
}

// Cancel abandons the pending OTP flow.
func (a *App) Cancel(_ context.Context) error {
	a.manager.CancelOTPFlow()
	printlnFn("Cancelled.")
	return nil
}

// Forgot runs the password reset flow: request a code, verify it, then set
// and confirm a new password.
func (a *App) Forgot(ctx context.Context) error {
	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	if err := a.report(a.manager.ForgotPassword(ctx, email)); err != nil {
		return err
	}

	code, err := getCode(a.reader, "Enter the 6-digit reset code", a.out)
	if err != nil {
		return err
	}
	if err := a.report(a.manager.VerifyResetCode(ctx, email, code)); err != nil {
		return err
	}

	password, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := validate.PasswordReset(email, password, confirm); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	return a.report(a.manager.ResetPassword(ctx, email, password))
}

// Profile prints the signed-in user.
func (a *App) Profile(_ context.Context) error {
	s := a.manager.Snapshot()
	if s.User == nil {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn("Name:        ", s.User.FullName)
	printlnFn("Email:       ", s.User.Email)
	printlnFn("Phone:       ", s.User.Phone)
	printlnFn("Professional:", s.User.Professional)
	return nil
}

// Session prints how long the current session has left.
func (a *App) Session(_ context.Context) error {
	s := a.manager.Snapshot()
	if s.State != services.StateAuthenticated {
		printlnFn("No active session.")
		return nil
	}
	printlnFn(fmt.Sprintf("Session expires %s (%s left of %s).",
		s.ExpiresAt.Local().Format(time.DateTime),
		formatRemaining(a.manager.RemainingSessionTime()),
		formatRemaining(a.manager.SessionDuration())))
	return nil
}

// Logout ends the session. The state watcher announces the result.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}
	a.manager.Logout(ctx)
	return nil
}
