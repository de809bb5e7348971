package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Invoker translates a single chunk for one target language. Implemented by
// Client; faked in tests.
type Invoker interface {
	TranslateChunk(ctx context.Context, text, source, target string) (string, error)
}

// ClientConfig holds backend client configuration.
type ClientConfig struct {
	Endpoint          string
	APIKey            string
	Timeout           time.Duration
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
}

// Client calls the external translation backend over HTTP with bounded
// retries and a circuit breaker.
type Client struct {
	endpoint          string
	apiKey            string
	httpClient        *http.Client
	breaker           *gobreaker.CircuitBreaker
	maxAttempts       int
	initialBackoff    time.Duration
	backoffMultiplier float64
	logger            *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg *ClientConfig, logger *slog.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	initialBackoff := cfg.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = 500 * time.Millisecond
	}

	backoffMultiplier := cfg.BackoffMultiplier
	if backoffMultiplier <= 0 {
		backoffMultiplier = 2.0
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "translation-backend",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Translation backend circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		endpoint:          strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:            cfg.APIKey,
		httpClient:        &http.Client{Timeout: timeout},
		breaker:           breaker,
		maxAttempts:       maxAttempts,
		initialBackoff:    initialBackoff,
		backoffMultiplier: backoffMultiplier,
		logger:            logger,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// TranslateChunk translates one chunk of text, retrying transient failures
// with exponential backoff. Definitive failures (unsupported language pair)
// are returned immediately without retrying.
func (c *Client) TranslateChunk(ctx context.Context, text, source, target string) (string, error) {
	var lastErr *BackendError

	backoff := c.initialBackoff
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		translated, err := c.callBackend(ctx, text, source, target)
		if err == nil {
			return translated, nil
		}

		if !errors.As(err, &lastErr) {
			lastErr = &BackendError{Language: target, Reason: err.Error(), Retryable: true}
		}

		if !lastErr.Retryable {
			c.logger.Error("Translation backend rejected request",
				slog.String("target", target),
				slog.String("reason", lastErr.Reason),
			)
			return "", lastErr
		}

		if attempt < c.maxAttempts {
			c.logger.Warn("Translation backend call failed, retrying...",
				slog.String("target", target),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.maxAttempts),
				slog.Duration("retry_after", backoff),
				slog.String("error", lastErr.Reason),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", &BackendError{Language: target, Reason: ctx.Err().Error(), Retryable: true}
			}
			backoff = time.Duration(float64(backoff) * c.backoffMultiplier)
		}
	}

	c.logger.Error("Translation backend call failed after all retries",
		slog.String("target", target),
		slog.Int("attempts", c.maxAttempts),
		slog.String("error", lastErr.Reason),
	)
	return "", lastErr
}

// callBackend performs one HTTP round trip through the circuit breaker.
func (c *Client) callBackend(ctx context.Context, text, source, target string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, text, source, target)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &BackendError{Language: target, Reason: "translation backend unavailable: " + err.Error(), Retryable: true}
		}
		return "", err
	}

	// Definitive rejections pass through the breaker as values so they do
	// not count toward tripping it.
	switch v := result.(type) {
	case *BackendError:
		return "", v
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unexpected backend result type %T", result)
	}
}

func (c *Client) doRequest(ctx context.Context, text, source, target string) (interface{}, error) {
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		APIKey: c.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &BackendError{Language: target, Reason: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendError{Language: target, Reason: "failed to read backend response: " + err.Error(), Retryable: true}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var tr translateResponse
		if err := json.Unmarshal(respBody, &tr); err != nil {
			return nil, &BackendError{Language: target, Reason: "malformed backend response: " + err.Error(), Retryable: true}
		}
		return tr.TranslatedText, nil

	case resp.StatusCode == http.StatusBadRequest:
		// Unsupported language pair or invalid input. Not retryable; the
		// backend will never accept this request.
		return &BackendError{Language: target, Reason: backendReason(respBody, resp.StatusCode), Retryable: false}, nil

	default:
		return nil, &BackendError{Language: target, Reason: backendReason(respBody, resp.StatusCode), Retryable: true}
	}
}

// backendReason extracts the error message from a backend response body,
// falling back to the HTTP status.
func backendReason(body []byte, statusCode int) string {
	var tr translateResponse
	if err := json.Unmarshal(body, &tr); err == nil && tr.Error != "" {
		return tr.Error
	}
	return fmt.Sprintf("backend returned status %d", statusCode)
}
