package transport

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
	"github.com/bnema/adminkit/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxResponseBytes = 1 << 20

// Interceptor wraps every outbound request: it attaches the bearer
// credential, executes through HTTPClient and classifies failures exactly
// once before handing them to callers and to the event bus.
type Interceptor struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials ports.CredentialSource
	Events      ports.EventPublisher
	Metrics     *Metrics
	Logger      zerolog.Logger
	UserAgent   string
}

var _ ports.Transport = (*Interceptor)(nil)

// StaticCredential is a CredentialSource with a fixed token.
type StaticCredential string

func (c StaticCredential) Credential() string {
	return string(c)
}

func (i *Interceptor) Execute(ctx context.Context, req domain.Request) domain.Result {
	requestID := uuid.NewString()
	logger := i.Logger.With().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", req.URL).
		Logger()

	start := time.Now()
	result, failed := i.do(ctx, req, requestID)
	if failed == nil {
		i.Metrics.observeRequest(req.Method, result.Status)
		logger.Debug().
			Int("status", result.Status).
			Dur("duration", time.Since(start)).
			Msg("request.ok")
		return result
	}

	return i.intercept(req, *failed, logger)
}

func (i *Interceptor) intercept(req domain.Request, f failure, logger zerolog.Logger) domain.Result {
	status := effectiveStatus(f)
	classified := classify(req.Method, f)

	i.Metrics.observeRequest(req.Method, status)
	i.Metrics.observeClassified(status)

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		logger.Warn().Int("status", status).Msg("request.credential_expired")
		i.publish(domain.Event{Kind: domain.EventCredentialExpired, Error: errorRef(classified)})
	}

	logger.Warn().
		Int("status", classified.Status).
		Str("message", classified.Message).
		Bool("returnable", classified.Returnable).
		Str("transport_error", f.TransportError).
		Msg("request.failed")

	i.publish(domain.Event{Kind: domain.EventErrorClassified, Error: errorRef(classified)})

	return domain.Result{Status: status, Error: errorRef(classified)}
}

func (i *Interceptor) do(ctx context.Context, req domain.Request, requestID string) (domain.Result, *failure) {
	endpoint, err := i.resolveURL(req.URL)
	if err != nil {
		f := transportFailure(err.Error())
		return domain.Result{}, &f
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		f := transportFailure(fmt.Sprintf("create request: %s", err))
		return domain.Result{}, &f
	}
	i.decorate(httpReq, req, requestID)

	resp, err := i.httpClient().Do(httpReq)
	if err != nil {
		f := transportFailure(err.Error())
		return domain.Result{}, &f
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		f := transportFailure(fmt.Sprintf("read response: %s", err))
		return domain.Result{}, &f
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Result{}, &failure{
			Status:      resp.StatusCode,
			Data:        data,
			ContentType: contentType,
		}
	}

	payload, err := successPayload(data, contentType)
	if err != nil {
		f := transportFailure(fmt.Sprintf("status %d: %s", resp.StatusCode, err))
		return domain.Result{}, &f
	}

	return domain.Result{Status: resp.StatusCode, Data: payload}, nil
}

func (i *Interceptor) decorate(httpReq *http.Request, req domain.Request, requestID string) {
	if req.Upload {
		httpReq.Header.Set("Accept", "*/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if i.Credentials != nil {
		if token := strings.TrimSpace(i.Credentials.Credential()); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpReq.Header.Set("X-Request-Id", requestID)
	if i.UserAgent != "" {
		httpReq.Header.Set("User-Agent", i.UserAgent)
	}
}

func (i *Interceptor) resolveURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}

	base := strings.TrimSpace(i.BaseURL)
	if base == "" {
		return "", errors.New("api base url is required")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}

	return strings.TrimRight(baseURL.String(), "/") + "/" + strings.TrimLeft(raw, "/"), nil
}

func (i *Interceptor) httpClient() *http.Client {
	if i.HTTPClient != nil {
		return i.HTTPClient
	}
	return http.DefaultClient
}

func (i *Interceptor) publish(event domain.Event) {
	if i.Events == nil {
		return
	}
	i.Events.Publish(event)
}

// successPayload passes JSON bodies through untouched. Non-JSON content is
// wrapped as a JSON string; a body that claims JSON but does not parse is a
// parse failure.
func successPayload(data []byte, contentType string) (json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if json.Valid(data) {
		return json.RawMessage(data), nil
	}

	if contentType == "" || strings.Contains(strings.ToLower(contentType), "json") {
		return nil, errors.New("decode response: invalid JSON payload")
	}

	wrapped, err := json.Marshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	return wrapped, nil
}

func errorRef(err domain.ClassifiedError) *domain.ClassifiedError {
	return &err
}
