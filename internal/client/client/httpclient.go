package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const authPathPrefix = "/v1/auth"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	newID      func() string
}

// NewHTTPClient builds a client for the Auth API rooted at baseURL
// (e.g. "http://192.168.1.24:5000"). timeout bounds each request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/") + authPathPrefix,
		httpClient: &http.Client{Timeout: timeout},
		newID:      common.NewRequestID,
	}
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type registerRequest struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Professional string `json:"professional"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (c *HTTPClient) Register(ctx context.Context, p models.Profile, password []byte) (string, error) {
	req := registerRequest{
		FullName:     p.FullName,
		Phone:        p.Phone,
		Email:        p.Email,
		Password:     string(password),
		Professional: p.Professional,
	}
	var resp messageResponse
	if err := c.post(ctx, "/register", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	var resp userResponse
	if err := c.post(ctx, "/login", credentialsRequest{Email: email, Password: string(password)}, &resp); err != nil {
		return nil, err
	}
	return userOrError(resp)
}

func (c *HTTPClient) RequestOTP(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, "/request-otp", emailRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email string, otp string) (*models.User, error) {
	var resp userResponse
	if err := c.post(ctx, "/verify-otp", verifyOTPRequest{Email: email, OTP: otp}, &resp); err != nil {
		return nil, err
	}
	return userOrError(resp)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, "/forgot-password", emailRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email string, newPassword []byte) (string, error) {
	var resp messageResponse
	req := resetPasswordRequest{Email: email, NewPassword: string(newPassword)}
	if err := c.post(ctx, "/reset-password", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func userOrError(resp userResponse) (*models.User, error) {
	if resp.User == nil {
		return nil, newAPIError(KindUnknown, http.StatusOK, "", errors.New("response has no user"))
	}
	return resp.User, nil
}

// post sends body as JSON to path and decodes a 2xx answer into out.
// Any other outcome is returned as *APIError.
func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return newAPIError(KindUnknown, 0, "", fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return newAPIError(KindUnknown, 0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, c.newID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newAPIError(KindNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return newAPIError(KindUnknown, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *HTTPClient) mapError(resp *http.Response) error {
	kind := kindForStatus(resp.StatusCode)

	var body messageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)

	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = strings.TrimSpace(body.Error)
	}

	return newAPIError(kind, resp.StatusCode, msg, fmt.Errorf("http status %s", resp.Status))
}
