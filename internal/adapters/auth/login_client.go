// Package auth exchanges login credentials for a bearer token against the
// admin API. Token issuance itself is the server's business.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/adminkit/internal/domain"
)

const (
	defaultLoginPath     = "auth/login"
	maxLoginResponseSize = 1 << 20
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type API struct {
	BaseURL   string
	LoginPath string
}

type LoginClient struct {
	API            API
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type LoginResult struct {
	Token       string
	Identity    domain.Identity
	Memberships []domain.AccountMembership
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	User        struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
	Accounts []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"accounts"`
}

type errorResponse struct {
	Message      string `json:"message"`
	MessageUpper string `json:"Message"`
}

func (c LoginClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return LoginResult{}, errors.New("email is required")
	}
	if password == "" {
		return LoginResult{}, errors.New("password is required")
	}

	loginPath := c.API.LoginPath
	if loginPath == "" {
		loginPath = defaultLoginPath
	}
	endpoint, err := buildAPIURL(c.API.BaseURL, loginPath)
	if err != nil {
		return LoginResult{}, err
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResult{}, fmt.Errorf("encode login request: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("request login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return LoginResult{}, ErrInvalidCredentials
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return LoginResult{}, fmt.Errorf("request login: %s", decodeError(resp))
	}

	var payload loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLoginResponseSize)).Decode(&payload); err != nil {
		return LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}

	token := payload.Token
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" {
		return LoginResult{}, errors.New("login response missing token")
	}

	result := LoginResult{
		Token: token,
		Identity: domain.Identity{
			Email: payload.User.Email,
			Name:  payload.User.Name,
			Role:  payload.User.Role,
		},
		Memberships: make([]domain.AccountMembership, 0, len(payload.Accounts)),
	}
	if result.Identity.Email == "" {
		result.Identity.Email = email
	}
	for _, account := range payload.Accounts {
		result.Memberships = append(result.Memberships, domain.AccountMembership{ID: account.ID, Name: account.Name})
	}

	return result, nil
}

func (c LoginClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c LoginClient) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func decodeError(resp *http.Response) string {
	var payload errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLoginResponseSize)).Decode(&payload); err != nil {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	message := payload.Message
	if message == "" {
		message = payload.MessageUpper
	}
	if message == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	return fmt.Sprintf("status %d: %s", resp.StatusCode, message)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	endpoint, err := parsed.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
