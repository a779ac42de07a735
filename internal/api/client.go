package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/siriwatk/gamestore-client/pkg/config"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/logger"
	"github.com/siriwatk/gamestore-client/pkg/metrics"
)

// TokenProvider yields the bearer token for authenticated calls. The session
// store satisfies this.
type TokenProvider interface {
	Token() (string, bool)
}

// Client talks to the remote marketplace API. It owns no state beyond the
// transport; every response it returns is the server's authoritative word.
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenProvider
	logg    *logger.Logger
	metrics *metrics.APIMetrics
}

// NewClient builds a marketplace API client.
func NewClient(cfg config.APIConfig, tokens TokenProvider, logg *logger.Logger, apiMetrics *metrics.APIMetrics) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logg:    logg,
		metrics: apiMetrics,
	}, nil
}

type callOptions struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any
	authed    bool
	// optionalAuth attaches the token when present but does not require one.
	optionalAuth bool
}

func (c *Client) do(ctx context.Context, opts callOptions, out any) error {
	target := *c.base
	target.Path = strings.TrimRight(target.Path, "/") + opts.path
	if opts.query != nil {
		target.RawQuery = opts.query.Encode()
	}

	var bodyReader io.Reader
	if opts.body != nil {
		raw, err := json.Marshal(opts.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, target.String(), bodyReader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if opts.authed || opts.optionalAuth {
		token, ok := c.token()
		if !ok && opts.authed {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in first")
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"operation":  opts.operation,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveDuration(opts.operation, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(opts.operation)
		c.logg.Warn(ctx, "api request failed")
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncFailure(opts.operation)
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "reading response")
	}

	if resp.StatusCode >= 400 {
		c.metrics.IncFailure(opts.operation)
		c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), "api request rejected")
		return statusError(resp.StatusCode, raw)
	}

	// A 2xx with no body is a valid "nothing to report" response.
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.metrics.IncFailure(opts.operation)
			return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decoding response")
		}
	}

	c.metrics.IncSuccess(opts.operation)
	c.logg.Debug(ctx, "api request completed")
	return nil
}

func (c *Client) token() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Token()
}

func statusError(status int, raw []byte) error {
	message := serverMessage(raw)
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, message)
	case http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	default:
		return pkgerrors.New(pkgerrors.CodeRemote, message)
	}
}

func serverMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return ""
}

// remoteFailure converts a success=false envelope into a remote error carrying
// the server's message.
func remoteFailure(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return pkgerrors.New(pkgerrors.CodeRemote, message)
}
