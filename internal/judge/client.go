package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelpick/internal/score"
)

const (
	defaultHTTPTimeout   = 30 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 800 * time.Millisecond
)

// Config captures the runtime settings required to talk to the judge model.
type Config struct {
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the Ollama chat API for vision scoring.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBackoff     time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default attempt count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the base delay between attempts. The delay
// grows linearly with the attempt number.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(c *Client) {
		c.retryBackoff = backoff
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a judge client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBackoff:     defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "http://localhost:11434"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("judge request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Judge sends the prompt and base64-encoded image to the model and returns
// the normalized analysis. The raw model output is coerced through
// score.Normalize, so a structurally valid but sloppy response still yields
// a usable record.
func (c *Client) Judge(ctx context.Context, prompt, imageBase64 string) (*score.Analysis, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("judge: prompt required")
	}
	if imageBase64 == "" {
		return nil, errors.New("judge: image payload required")
	}
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt, Images: []string{imageBase64}},
		},
		Stream: false,
		Format: "json",
	}

	content, err := c.chatWithRetry(ctx, payload, "judge")
	if err != nil {
		return nil, err
	}

	extracted, err := ExtractJSON(content)
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	analysis, err := score.Normalize(extracted)
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	return &analysis, nil
}

// HealthCheck verifies the judge endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/api/tags")
	if err != nil {
		return fmt.Errorf("judge health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("judge health: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("judge health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("judge health: http %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) chatWithRetry(ctx context.Context, payload chatRequest, op string) (string, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.sendChatOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt >= attempts || !isRetryable(err) || ctx.Err() != nil {
			break
		}
		delay := c.retryBackoff * time.Duration(attempt)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return "", sleepErr
		}
	}

	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) sendChatOnce(ctx context.Context, payload chatRequest) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/api/chat")
	if err != nil {
		return "", fmt.Errorf("judge request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("judge request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("judge request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("judge request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("judge request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("judge request: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("judge request: api error: %s", strings.TrimSpace(parsed.Error))
	}
	if strings.TrimSpace(parsed.Message.Content) == "" {
		return "", errors.New("judge request: empty content")
	}
	return parsed.Message.Content, nil
}

// isRetryable reports whether the failure is transient. Client-side request
// mistakes and malformed responses are not retried.
func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode >= http.StatusInternalServerError:
			return true
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return true
		case statusErr.StatusCode == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
