package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/validate"
)

const (
	msgSaveFailed       = "Could not save your session. Please try again."
	msgLoginOK          = "Login successful"
	msgRegistrationOK   = "Registration successful. Please check your email for the verification code."
	msgOTPSent          = "OTP sent to your email"
	msgVerifiedLogin    = "Login successful"
	msgVerifiedRegister = "Account verified. Welcome!"
	msgResetCodeOK      = "Code verified. You can now set a new password."
	msgResetSent        = "Password reset code sent to your email"
	msgResetOK          = "Password has been reset. Please log in."
	msgLoggedOut        = "Logged out"
)

func failure(msg string) Result {
	return Result{Error: msg}
}

// apiMessage extracts a user-facing message from an API failure.
func apiMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func orDefault(msg, def string) string {
	if strings.TrimSpace(msg) == "" {
		return def
	}
	return msg
}

// Login authenticates with email and password and starts a session.
func (m *SessionManager) Login(ctx context.Context, email string, password []byte) Result {
	email = strings.TrimSpace(email)
	if err := validate.Credentials(email, password); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	user, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.log.Warn(ctx, "login failed", "email", email, "error", err)
		return failure(apiMessage(err, "Login failed"))
	}

	return m.establish(ctx, *user, msgLoginOK)
}

// Register creates an account. No session is created: the account is
// confirmed with VerifyOTP, so the manager moves to AwaitingOTP with the
// registration flag set.
func (m *SessionManager) Register(ctx context.Context, profile models.Profile, password []byte) Result {
	profile.Email = strings.TrimSpace(profile.Email)
	if err := validate.Registration(profile, password, nil); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	msg, err := m.api.Register(ctx, profile, password)
	if err != nil {
		m.log.Warn(ctx, "registration failed", "email", profile.Email, "error", err)
		return failure(apiMessage(err, "Registration failed"))
	}

	m.startFlow(profile.Email, true)
	m.log.Info(ctx, "registration accepted, awaiting otp", "email", profile.Email)

	return Result{
		Success:     true,
		Message:     orDefault(msg, msgRegistrationOK),
		RequiresOTP: true,
		Email:       profile.Email,
	}
}

// RequestOTP asks the API to send a one-time code to email. The registration
// flag of a flow already running for the same email is kept.
func (m *SessionManager) RequestOTP(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	msg, err := m.api.RequestOTP(ctx, email)
	if err != nil {
		m.log.Warn(ctx, "otp request failed", "email", email, "error", err)
		return failure(apiMessage(err, "Could not send OTP"))
	}

	m.mu.Lock()
	registration := m.registration && m.pendingEmail == email
	m.mu.Unlock()
	m.startFlow(email, registration)

	return Result{
		Success:     true,
		Message:     orDefault(msg, msgOTPSent),
		RequiresOTP: true,
		Email:       email,
	}
}

// VerifyOTP confirms a one-time code and starts a session exactly like a
// successful Login. isRegistration only changes the success message.
func (m *SessionManager) VerifyOTP(ctx context.Context, email, otp string, isRegistration bool) Result {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)
	if err := validate.Email(email); err != nil {
		return failure(err.Error())
	}
	if err := validate.OTP(otp); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	user, err := m.api.VerifyOTP(ctx, email, otp)
	if err != nil {
		m.log.Warn(ctx, "otp verification failed", "email", email, "error", err)
		return failure(apiMessage(err, "OTP verification failed"))
	}

	msg := msgVerifiedLogin
	if isRegistration {
		msg = msgVerifiedRegister
	}
	return m.establish(ctx, *user, msg)
}

// ForgotPassword asks the API to send a password reset code.
func (m *SessionManager) ForgotPassword(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	msg, err := m.api.ForgotPassword(ctx, email)
	if err != nil {
		m.log.Warn(ctx, "forgot password failed", "email", email, "error", err)
		return failure(apiMessage(err, "Could not send reset code"))
	}
	return Result{Success: true, Message: orDefault(msg, msgResetSent), Email: email}
}

// VerifyResetCode checks a password reset code with the API. It never
// creates a session.
func (m *SessionManager) VerifyResetCode(ctx context.Context, email, otp string) Result {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)
	if err := validate.Email(email); err != nil {
		return failure(err.Error())
	}
	if err := validate.OTP(otp); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	if _, err := m.api.VerifyOTP(ctx, email, otp); err != nil {
		m.log.Warn(ctx, "reset code verification failed", "email", email, "error", err)
		return failure(apiMessage(err, "Invalid OTP"))
	}
	return Result{Success: true, Message: msgResetCodeOK, Email: email}
}

// ResetPassword sets a new password. The session state is untouched.
func (m *SessionManager) ResetPassword(ctx context.Context, email string, newPassword []byte) Result {
	email = strings.TrimSpace(email)
	if err := validate.PasswordReset(email, newPassword, nil); err != nil {
		return failure(err.Error())
	}

	m.begin()
	defer m.end()

	msg, err := m.api.ResetPassword(ctx, email, newPassword)
	if err != nil {
		m.log.Warn(ctx, "password reset failed", "email", email, "error", err)
		return failure(apiMessage(err, "Password reset failed"))
	}
	return Result{Success: true, Message: orDefault(msg, msgResetOK), Email: email}
}

// CancelOTPFlow drops a pending OTP flow. Calling it without one is a no-op.
func (m *SessionManager) CancelOTPFlow() {
	m.mu.Lock()
	if m.pendingEmail == "" && !m.registration {
		m.mu.Unlock()
		return
	}
	m.pendingEmail = ""
	m.registration = false
	m.mu.Unlock()

	m.publish()
}

// Logout ends the session. The store key is deleted and Anonymous is
// published even if the delete fails. Logging out twice is harmless.
func (m *SessionManager) Logout(ctx context.Context) Result {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	m.clearSession(ctx)
	m.log.Info(ctx, "logged out")
	return Result{Success: true, Message: msgLoggedOut}
}

func (m *SessionManager) startFlow(email string, registration bool) {
	m.mu.Lock()
	m.pendingEmail = email
	m.registration = registration
	m.mu.Unlock()

	m.publish()
}

// establish persists a new session for user and then publishes it. Nothing
// is published when the store write fails.
func (m *SessionManager) establish(ctx context.Context, user models.User, message string) Result {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	// The store keeps millisecond precision; stay consistent with what a
	// later Init will read back.
	rec := models.NewSessionRecord(user, m.clock.Now().Truncate(time.Millisecond))
	raw, err := rec.Marshal()
	if err == nil {
		err = m.store.Set(ctx, m.key, raw)
	}
	if err != nil {
		m.log.Error(ctx, "failed to persist session", "email", user.Email, "error", err)
		return failure(msgSaveFailed)
	}

	expiresAt := rec.ExpiresAt(m.duration)

	m.mu.Lock()
	m.user = rec.User
	m.expiresAt = expiresAt
	m.pendingEmail = ""
	m.registration = false
	m.expiringSoon = m.inWarningWindow(expiresAt.Sub(rec.IssuedAt))
	m.armLocked()
	m.mu.Unlock()

	m.publish()
	m.log.Info(ctx, "session started", "email", user.Email, "expires_at", expiresAt)

	return Result{Success: true, Message: message, Email: user.Email}
}

// clearSession deletes the persisted session and publishes Anonymous.
// Callers hold commitMu.
func (m *SessionManager) clearSession(ctx context.Context) {
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.log.Error(ctx, "failed to delete persisted session", "error", err)
	}

	m.mu.Lock()
	m.user = nil
	m.expiresAt = time.Time{}
	m.expiringSoon = false
	m.pendingEmail = ""
	m.registration = false
	m.disarmLocked()
	m.mu.Unlock()

	m.publish()
}
