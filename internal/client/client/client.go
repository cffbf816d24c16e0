package client

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
)

// Client is the Auth API contract consumed by the session manager.
// Every failure is an *APIError.
type Client interface {
	Close() error
	Register(ctx context.Context, profile models.Profile, password []byte) (string, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	RequestOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email string, otp string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email string, newPassword []byte) (string, error)
}
