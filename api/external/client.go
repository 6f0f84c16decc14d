/* client.go
 * Contains the HTTP client shared by the source adapters. Requests carry the common browser headers, wait on an
 * outbound rate limiter, run inside a per-source circuit breaker and can be aborted as a group
 */

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrNoData is returned when an upstream answers without a usable payload (empty body, null, missing root field)
var ErrNoData = errors.New("no data received")

// ErrAborted is returned for requests cancelled through Client.Abort
var ErrAborted = errors.New("request aborted")

// CommonHeaders are sent with every request
var CommonHeaders = map[string]string{
	"Cache-Control": "no-cache",
	"User-Agent":    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Content-Type":  "application/json",
	"Accept":        "application/json",
}

type Request struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
	Cookies map[string]string
	// ResponseCookies lists the cookie names FetchString should return
	ResponseCookies []string
}

type ClientOptions struct {
	Timeout    time.Duration
	Limiter    *rate.Limiter
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through
	OpenTimeout time.Duration
}

type Client struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger

	mu          sync.Mutex
	abortCtx    context.Context
	abortCancel context.CancelFunc
}

// NewClient creates a client for one source.
// Preconditions: Receives the source name (used for logs and the breaker) and the options. Zero options get defaults
// Postconditions: Returns a ready client
func NewClient(name string, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = time.Minute
	}
	log := opts.Logger.WithField("source", name)

	c := &Client{
		name:    name,
		http:    opts.HTTPClient,
		limiter: opts.Limiter,
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		// Aborts and empty payloads say nothing about the upstream's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrAborted) || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	c.abortCtx, c.abortCancel = context.WithCancel(context.Background())
	return c
}

// Abort cancels every request currently in flight. Requests issued afterwards are not affected
func (c *Client) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abortCancel()
	c.abortCtx, c.abortCancel = context.WithCancel(context.Background())
}

func (c *Client) currentAbortCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.abortCtx
}

// BreakerState reports the circuit breaker state, e.g. "closed" or "open"
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// do executes the request and returns the response body and the response cookies
func (c *Client) do(ctx context.Context, req Request) ([]byte, []*http.Cookie, error) {
	abortCtx := c.currentAbortCtx()
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(abortCtx, cancel)
	defer stop()

	wrap := func(err error) error {
		if abortCtx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrAborted, req.URL)
		}
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			return nil, nil, wrap(fmt.Errorf("error waiting for rate limiter: %w", err))
		}
	}

	type result struct {
		body    []byte
		cookies []*http.Cookie
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		method := req.Method
		if method == "" {
			method = http.MethodGet
		}
		var body io.Reader
		if req.Body != nil {
			body = bytes.NewReader(req.Body)
		}
		request, err := http.NewRequestWithContext(reqCtx, method, req.URL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for k, v := range CommonHeaders {
			request.Header.Set(k, v)
		}
		for k, v := range req.Headers {
			request.Header.Set(k, v)
		}
		for k, v := range req.Cookies {
			request.AddCookie(&http.Cookie{Name: k, Value: v})
		}

		response, err := c.http.Do(request)
		if err != nil {
			return nil, wrap(fmt.Errorf("request failed: %w", err))
		}
		defer response.Body.Close()

		if response.StatusCode < 200 || response.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status code %d from %s", response.StatusCode, req.URL)
		}
		data, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, wrap(fmt.Errorf("failed to read response body: %w", err))
		}
		return result{body: data, cookies: response.Cookies()}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	r := out.(result)
	return r.body, r.cookies, nil
}

// FetchJSON executes the request and decodes the JSON response into out.
// Preconditions: Receives a context, the request and a pointer to decode into
// Postconditions: Returns ErrNoData for an empty or null body, ErrAborted if aborted, or any transport or decode error
func (c *Client) FetchJSON(ctx context.Context, req Request, out any) error {
	body, _, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: %s", ErrNoData, req.URL)
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", req.URL, err)
	}
	return nil
}

// FetchString executes the request and returns the body and the values of the requested response cookies
func (c *Client) FetchString(ctx context.Context, req Request) (string, map[string]string, error) {
	body, cookies, err := c.do(ctx, req)
	if err != nil {
		return "", nil, err
	}
	wanted := make(map[string]string)
	for _, name := range req.ResponseCookies {
		for _, cookie := range cookies {
			if cookie.Name == name {
				wanted[name] = cookie.Value
			}
		}
	}
	return string(body), wanted, nil
}
