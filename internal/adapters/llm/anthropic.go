// Package llm talks to the Anthropic Messages API
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-haiku-latest"
	defaultVersion   = "2023-06-01"
	defaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second
	maxBody          = 1 << 20
)

// Options configures the client
type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	Version   string
	MaxTokens int
	Timeout   time.Duration
}

// Client is a single shot completion client; it never retries so a slow
// or failing judge costs one timeout at most
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New builds a client; an empty APIKey yields a disabled client
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Version == "" {
		o.Version = defaultVersion
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("llm"),
	}
}

// Enabled reports whether a credential is configured
func (c *Client) Enabled() bool { return c != nil && strings.TrimSpace(c.opts.APIKey) != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends one system+user exchange and returns the concatenated text
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", perr.Unavailablef("llm: no api key configured")
	}
	body, err := json.Marshal(request{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "llm: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "llm: new request")
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", c.opts.APIKey)
	req.Header.Set("anthropic-version", c.opts.Version)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "llm: request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "llm: read body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail := string(raw)
		if len(tail) > 512 {
			tail = tail[:512]
		}
		return "", perr.FromStatus(resp.StatusCode, "llm: status %d: %s", resp.StatusCode, tail)
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "llm: decode response")
	}
	var b strings.Builder
	for _, part := range out.Content {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	c.log.Debug().
		Dur("latency", time.Since(start)).
		Int("input_tokens", out.Usage.InputTokens).
		Int("output_tokens", out.Usage.OutputTokens).
		Str("stop_reason", out.StopReason).
		Msg("llm completion")

	if b.Len() == 0 {
		return "", perr.Newf(perr.ErrorCodeUpstream, "llm: empty completion")
	}
	return b.String(), nil
}
