package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultTimeout    = 40 * time.Second
	DefaultBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff = 6 * time.Second
)

var (
	// ErrKeysExhausted is the terminal result once every attempt failed with a
	// retryable error. Callers treat it like any other failure.
	ErrKeysExhausted = errors.New("gemini: all API key attempts exhausted")

	// ErrAttemptTimeout marks a single attempt that ran past its deadline.
	ErrAttemptTimeout = errors.New("gemini: attempt timed out")

	// ErrEmptyResponse is returned when the model answered without any text.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// ErrorKind - how the retry loop reacts to an attempt error
type ErrorKind int

const (
	KindFatal ErrorKind = iota
	KindTimeout
	KindQuota
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindQuota:
		return "quota"
	default:
		return "fatal"
	}
}

// quotaMarkers are matched as substrings of the lowercased error text.
// "generate" is stripped first so generateContent never reads as "rate".
var quotaMarkers = []string{"quota", "429", "rate"}

// Classify - decide whether an attempt error is retryable
func Classify(err error) ErrorKind {
	if err == nil {
		return KindFatal
	}
	if errors.Is(err, ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || strings.Contains(strings.ToUpper(apiErr.Status), "RESOURCE_EXHAUSTED") {
			return KindQuota
		}
	}

	text := strings.ReplaceAll(strings.ToLower(err.Error()), "generate", "")
	for _, marker := range quotaMarkers {
		if strings.Contains(text, marker) {
			return KindQuota
		}
	}
	return KindFatal
}

// Image - binary image payload sent next to the prompt
type Image struct {
	Data     []byte
	MIMEType string
}

// Request - one model invocation
type Request struct {
	Prompt     string
	Image      *Image
	Timeout    time.Duration // per attempt; zero uses the client default
	MaxRetries int           // zero uses the pool size
}

// Generator performs a single model call with the given key.
type Generator interface {
	GenerateContent(ctx context.Context, apiKey string, parts []*genai.Part) (string, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client - key-rotating, retrying access to the model
type Client struct {
	pool       *KeyPool
	generator  Generator
	timeout    time.Duration
	backoff    time.Duration
	maxBackoff time.Duration
	sleep      Sleeper
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.backoff = base
		}
		if ceiling > 0 {
			c.maxBackoff = ceiling
		}
	}
}

func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// NewClient - model access over pool using generator for the actual calls
func NewClient(pool *KeyPool, generator Generator, opts ...Option) *Client {
	c := &Client{
		pool:       pool,
		generator:  generator,
		timeout:    DefaultTimeout,
		backoff:    DefaultBackoff,
		maxBackoff: DefaultMaxBackoff,
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate - prompt with an optional image, default timeout and retries
func (c *Client) Generate(ctx context.Context, prompt string, img *Image) (string, error) {
	return c.Do(ctx, Request{Prompt: prompt, Image: img})
}

// GenerateText - text-only prompt
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.Do(ctx, Request{Prompt: prompt})
}

// Do runs req against the pool. Every attempt takes the next key. Timeouts retry
// immediately, quota errors retry after an exponential backoff, anything else is
// returned at once. When all attempts fail the result wraps ErrKeysExhausted.
func (c *Client) Do(ctx context.Context, req Request) (string, error) {
	parts, err := buildParts(req)
	if err != nil {
		return "", err
	}

	attempts := req.MaxRetries
	if attempts <= 0 {
		attempts = c.pool.Size()
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	delay := c.backoff
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("gemini: request canceled: %w", err)
		}

		slot, key := c.pool.Next()
		text, err := c.attempt(ctx, key, parts, timeout)
		if err == nil {
			log.Printf("✅ [Gemini] Success with key #%d (attempt %d/%d)", slot+1, attempt, attempts)
			return text, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("gemini: request canceled: %w", ctxErr)
		}

		switch Classify(err) {
		case KindTimeout:
			log.Printf("⏳ [Gemini] Key #%d timed out after %s (attempt %d/%d)", slot+1, timeout, attempt, attempts)
		case KindQuota:
			log.Printf("⚠️  [Gemini] Key #%d hit quota/rate limit (attempt %d/%d): %v", slot+1, attempt, attempts, err)
			if attempt < attempts {
				if err := c.sleep(ctx, delay); err != nil {
					return "", err
				}
				delay *= 2
				if delay > c.maxBackoff {
					delay = c.maxBackoff
				}
			}
		default:
			log.Printf("❌ [Gemini] Key #%d failed with non-retryable error: %v", slot+1, err)
			return "", fmt.Errorf("gemini: key #%d: %w", slot+1, err)
		}
	}

	return "", fmt.Errorf("%w (%d attempts): %w", ErrKeysExhausted, attempts, lastErr)
}

// attempt bounds one generator call by timeout even if the generator ignores ctx.
func (c *Client) attempt(ctx context.Context, key string, parts []*genai.Part, timeout time.Duration) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.generator.GenerateContent(attemptCtx, key, parts)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: %w", ErrAttemptTimeout, r.err)
		}
		return r.text, r.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrAttemptTimeout
	}
}

func buildParts(req Request) ([]*genai.Part, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("gemini: prompt is required")
	}
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil && len(req.Image.Data) > 0 {
		mimeType := req.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, mimeType))
	}
	return parts, nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("gemini: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
