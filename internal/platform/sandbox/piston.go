package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ferrors"
	"github.com/rs/zerolog"
)

// Request is one program run: source plus the stdin of a single test case.
type Request struct {
	Language string
	Version  string
	Source   string
	Stdin    string
}

// Executor runs code and returns its captured output.
type Executor interface {
	Execute(ctx context.Context, req Request) (string, error)
}

var (
	ErrBadStatus     = errors.New("sandbox returned non-2xx status")
	ErrMissingOutput = errors.New("sandbox response has no run output")
)

// StatusError is a non-2xx reply from the sandbox.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrBadStatus }

// sandboxHealthy reports whether err leaves the breaker closed. Only transport
// failures, deadlines and 5xx replies count against the sandbox; rejected
// input (4xx, no run output), caller cancellation and local bulkhead
// saturation do not.
func sandboxHealthy(err error) bool {
	if err == nil {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	return errors.Is(err, ErrMissingOutput) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, ferrors.ErrBulkheadFull)
}

type pistonFile struct {
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
	Stdin    string       `json:"stdin"`
}

type pistonResponse struct {
	Message string `json:"message"`
	Run     *struct {
		Output *string `json:"output"`
	} `json:"run"`
}

type PistonConfig struct {
	URL           string
	Timeout       time.Duration
	MaxConcurrent int
	HTTPClient    *http.Client
}

// PistonClient calls the Piston execute API. Calls are bounded by a timeout,
// a bulkhead and a circuit breaker. Nothing is retried.
type PistonClient struct {
	url     string
	timeout time.Duration
	http    *http.Client
	breaker circuitbreaker.CircuitBreaker[string]
	limiter bulkhead.Bulkhead[string]
	log     zerolog.Logger
}

func NewPistonClient(cfg PistonConfig, log zerolog.Logger) *PistonClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	c := &PistonClient{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    httpClient,
		log:     log,
	}

	c.breaker = circuitbreaker.New[string](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: sandboxHealthy,
		OnStateChange: func(from, to circuitbreaker.State) {
			c.log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("sandbox circuit breaker state change")
		},
	})

	c.limiter = bulkhead.New[string](bulkhead.Config{
		MaxConcurrent: maxConcurrent,
		MaxQueue:      maxConcurrent * 4,
		QueueTimeout:  cfg.Timeout,
	})

	return c
}

func (c *PistonClient) Execute(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return c.limiter.Execute(ctx, func(ctx context.Context) (string, error) {
			return c.execute(ctx, req)
		})
	})
}

func (c *PistonClient) execute(ctx context.Context, req Request) (string, error) {
	version := req.Version
	if version == "" {
		version = "*"
	}

	body, err := json.Marshal(pistonRequest{
		Language: req.Language,
		Version:  version,
		Files:    []pistonFile{{Content: req.Source}},
		Stdin:    req.Stdin,
	})
	if err != nil {
		return "", fmt.Errorf("piston: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("piston: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("piston: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("piston: %w", &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))})
	}

	var result pistonResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("piston: decode response: %w", err)
	}
	if result.Run == nil || result.Run.Output == nil {
		if result.Message != "" {
			return "", fmt.Errorf("piston: %s: %w", result.Message, ErrMissingOutput)
		}
		return "", fmt.Errorf("piston: %w", ErrMissingOutput)
	}

	c.log.Debug().
		Str("lang", req.Language).
		Str("version", version).
		Dur("latency", time.Since(start)).
		Msg("executed code via piston")

	return *result.Run.Output, nil
}
