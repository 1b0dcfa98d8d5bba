// Package modeladapter defines the contract between conversations and model
// inference endpoints.
//
// It contains the [Completer] interface, the [Reply] type carrying the
// assistant message together with its termination reason, and an embeddable
// [ModelAdapter] base struct with HTTP helpers, auth, and usage tracking.
// Provider-specific code lives in separate packages that import this one.
package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/chats/message"
	"github.com/quarryhq/stratum/pkg/modeladapter/usage"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
)

// StopReason is the model's stated reason for ending a response. Values not
// listed here pass through verbatim from the provider.
type StopReason string

const (
	StopEndTurn      StopReason = "end_turn"
	StopMaxTokens    StopReason = "max_tokens"
	StopStopSequence StopReason = "stop_sequence"
	StopToolUse      StopReason = "tool_use"
)

// IsToolUse reports whether the model stopped to request tool execution.
func (s StopReason) IsToolUse() bool {
	return s == StopToolUse
}

// Reply is one completed inference round trip: the assistant message with
// its content parts in the order the model produced them, and the reason
// generation stopped.
type Reply struct {
	Message    message.Message
	StopReason StopReason
}

// Completer sends a conversation to a model and returns its reply. The
// tools argument declares which tools are available for this call; only
// their names, descriptions, and schemas cross the boundary.
type Completer interface {
	Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (Reply, error)
}

// RateLimitError is returned when the API responds with HTTP 429. It
// carries an optional RetryAfter duration parsed from the Retry-After
// header. No retry is performed here; the caller decides what to do.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// ParseRetryAfter parses a Retry-After header value as either seconds or an
// HTTP-date. Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// Auth holds authentication settings for a provider API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// ModelAdapter holds shared state for HTTP-based provider implementations.
// Embed it in concrete adapter structs to get request building, auth,
// custom headers, and usage tracking. Concrete types define their own
// Complete method to shadow the default stub.
type ModelAdapter struct {
	Name        string            // Model identifier.
	Temperature float64           // Sampling temperature; zero means provider default.
	MaxTokens   int               // Maximum tokens in the response.
	Auth        Auth              // Authentication settings.
	BaseURL     string            // API base URL (no trailing slash).
	Client      *http.Client      // HTTP client; falls back to a default client.
	Headers     map[string]string // Extra headers applied to every request.
	Usage       usage.Tracker     // Token usage tracker.

	clientOnce    sync.Once
	defaultClient *http.Client
}

// UsageTracker returns the adapter's token usage tracker.
func (a *ModelAdapter) UsageTracker() *usage.Tracker { return &a.Usage }

// Complete is a stub that returns an error. Concrete adapters that embed
// ModelAdapter define their own Complete method to shadow this one.
func (a *ModelAdapter) Complete(_ context.Context, _ *chat.Chat, _ []toolbox.Tool) (Reply, error) {
	return Reply{}, errors.New("modeladapter: Complete not implemented")
}

// httpClient returns the configured client or a cached default with a
// 10-minute timeout.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		a.defaultClient = &http.Client{Timeout: 10 * time.Minute}
	})

	return a.defaultClient
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if a.Auth.Key != "" {
		header := a.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := a.Auth.Key
		if header == "Authorization" {
			scheme := a.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if a.Auth.Scheme != "" {
			value = a.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, sends a POST to the given path, checks
// for a 2xx status, and unmarshals the response body into dest. A 429
// response becomes a *RateLimitError. If dest is nil the response body is
// discarded after the status check.
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := a.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		respBody, _ := io.ReadAll(resp.Body)
		return &RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
