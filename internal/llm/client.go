// Package llm wraps a single call to the hosted Gemini generation endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"hackathon-judge/pkg/logger"
)

// Temperature is kept low so replies stick to the requested JSON shape.
const Temperature float32 = 0.2

const maxErrorBody = 400

var (
	// ErrMissingCredential is a configuration error: no API key was supplied
	// and none is configured for the process.
	ErrMissingCredential = errors.New("gemini api key is not configured")
	// ErrEmptyResponse means the model answered with no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// UpstreamError is a non-success status from the generation service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation service returned %d: %s", e.Status, e.Body)
}

// Generator produces text for a prompt. *Client implements it; flows depend on
// the interface so tests can script replies.
type Generator interface {
	Generate(ctx context.Context, model, prompt, credential string) (string, error)
}

type Config struct {
	APIKey       string
	DefaultModel string
	// BaseURL overrides the API endpoint. Empty means the SDK default.
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	cfg     Config
	log     *logger.Logger
	observe func(outcome string)
}

func New(cfg Config, l *logger.Logger) *Client {
	return &Client{cfg: cfg, log: l, observe: func(string) {}}
}

// OnOutcome registers a hook called once per Generate with "ok" or an error kind.
func (c *Client) OnOutcome(fn func(outcome string)) {
	if fn != nil {
		c.observe = fn
	}
}

// Generate sends prompt as a single user message. credential overrides the
// configured key when non-empty. There are no retries.
func (c *Client) Generate(ctx context.Context, model, prompt, credential string) (string, error) {
	key := strings.TrimSpace(credential)
	if key == "" {
		key = c.cfg.APIKey
	}
	if key == "" {
		c.observe("config")
		return "", ErrMissingCredential
	}
	if strings.TrimSpace(model) == "" {
		model = c.cfg.DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.cfg.HTTPClient,
	}
	if c.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		c.observe("config")
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	c.log.Debugf("generate: model=%s prompt=%d chars", model, utf8.RuneCountInString(prompt))
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(Temperature),
	})
	if err != nil {
		if ue := upstreamError(err); ue != nil {
			c.observe("upstream")
			return "", ue
		}
		c.observe("transport")
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.observe("empty")
		return "", ErrEmptyResponse
	}
	c.observe("ok")
	return text, nil
}

func upstreamError(err error) *UpstreamError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return newUpstreamError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return newUpstreamError(*apiErrPtr)
	}
	return nil
}

func newUpstreamError(e genai.APIError) *UpstreamError {
	body := e.Message
	if e.Status != "" {
		body = e.Status + ": " + body
	}
	return &UpstreamError{Status: e.Code, Body: truncate(body, maxErrorBody)}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
