package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/albapepper/doctolib-checker/internal/httputil"
)

// PushoverSender posts messages to the Pushover messages API.
// Nil-safe: a nil sender logs the message and reports success (dry run).
type PushoverSender struct {
	endpoint   string
	apiToken   string
	userKey    string
	httpClient *http.Client
	logger     *slog.Logger
}

// DispatchError reports a failed notification delivery.
type DispatchError struct {
	StatusCode int
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pushover returned %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("pushover: %v", e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// NewPushoverSender creates a sender. An empty endpoint selects the public
// Pushover API. A zero timeout waits for the transport to resolve.
func NewPushoverSender(endpoint, apiToken, userKey string, timeout time.Duration, logger *slog.Logger) *PushoverSender {
	if logger == nil {
		logger = slog.Default()
	}
	if endpoint == "" {
		endpoint = DefaultPushoverURL
	}
	return &PushoverSender{
		endpoint:   endpoint,
		apiToken:   apiToken,
		userKey:    userKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send delivers one message. Delivery is fire-and-forget: the response body
// is discarded and nothing is retried.
func (s *PushoverSender) Send(ctx context.Context, message string) error {
	if s == nil {
		slog.Info("Pushover send skipped (dry run)", "message", message)
		return nil
	}

	form := url.Values{
		"token":   {s.apiToken},
		"user":    {s.userKey},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &DispatchError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &DispatchError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxErrorBody+1))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DispatchError{StatusCode: resp.StatusCode, Err: errors.New(httputil.Snippet(body))}
	}

	s.logger.Debug("Pushover message sent", "status", resp.StatusCode, "length", len(message))
	return nil
}
