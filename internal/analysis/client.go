package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderProvider allows injecting per-request headers.
type HeaderProvider func() map[string]string

// Client talks to the analysis service over HTTP. Both endpoints are
// best-effort collaborators: evaluation errors surface to the caller to
// decide, commentary errors are swallowed into an empty string.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	logger  *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		logger:         zap.NewNop(),
		defaultTimeout: 10 * time.Second,
		retryMax:       2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate scores a position snapshot for the given side to move.
func (c *Client) Evaluate(ctx context.Context, fen, turn string) (Evaluation, error) {
	var eval Evaluation
	req := evaluateRequest{FEN: fen, Turn: turn}
	if err := c.doJSON(ctx, "/evaluate", req, &eval, true); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}

// Comment asks for a short flavor remark on the last move. It never
// returns an error: any failure, timeout, or non-2xx yields "".
func (c *Client) Comment(ctx context.Context, fen, lastMoveSAN string) string {
	var resp commentResponse
	req := commentRequest{FEN: fen, LastMoveSAN: lastMoveSAN}
	if err := c.doJSON(ctx, "/comment", req, &resp, false); err != nil {
		c.logger.Debug("analysis comment failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(resp.Text)
}

func (c *Client) doJSON(ctx context.Context, path string, in any, out any, retry bool) error {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req.SetBody(body)

	timeout := c.defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remain := time.Until(deadline); remain < timeout {
			timeout = remain
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	attempts := 1
	if retry && c.retryMax > 0 {
		attempts += c.retryMax
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.http.DoTimeout(req, resp, timeout); err != nil {
			lastErr = err
			continue
		}
		status := resp.StatusCode()
		if status < 200 || status > 299 {
			lastErr = fmt.Errorf("analysis %s: status %d", path, status)
			if status >= 400 && status < 500 {
				return lastErr
			}
			continue
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("analysis request failed")
	}
	return lastErr
}
