// Package oracle adapts the Anthropic client to the degraded-but-never-fatal
// contract the research loops rely on: a failed call yields an empty answer,
// not an error.
package oracle

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/deep-research/internal/config"
	"github.com/sells-group/deep-research/pkg/anthropic"
)

// Oracle is the LLM boundary used by every research component.
type Oracle interface {
	// Invoke sends a prompt with optional context text and returns the
	// model's answer. Any failure returns an empty string; callers must
	// treat "" as "no usable answer" and apply their own fallback.
	Invoke(ctx context.Context, prompt, contextText string) string

	// InvokeJSON sends a prompt expecting a JSON answer and unmarshals it
	// into out. Returns false when the call fails or the answer does not
	// parse, so callers fall back to their conservative defaults.
	InvokeJSON(ctx context.Context, prompt, contextText string, out any) bool
}

// Client implements Oracle over the Anthropic messages API with a
// process-wide rate limit in front of every call. One Client is created per
// workflow run; there is no global singleton.
type Client struct {
	api     anthropic.Client
	model   string
	maxTok  int64
	limiter *rate.Limiter
}

// New creates an oracle client from configuration.
func New(api anthropic.Client, cfg config.AnthropicConfig) *Client {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 2.0
	}
	maxTok := cfg.MaxTokens
	if maxTok <= 0 {
		maxTok = 1024
	}
	return &Client{
		api:     api,
		model:   cfg.Model,
		maxTok:  maxTok,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) Invoke(ctx context.Context, prompt, contextText string) string {
	if err := c.limiter.Wait(ctx); err != nil {
		return ""
	}

	msgs := make([]anthropic.Message, 0, 2)
	if contextText != "" {
		msgs = append(msgs, anthropic.Message{Role: "user", Content: contextText})
	}
	msgs = append(msgs, anthropic.Message{Role: "user", Content: prompt})

	resp, err := c.api.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTok,
		Messages:  msgs,
	})
	if err != nil {
		zap.L().Warn("oracle: call failed", zap.Error(err))
		return ""
	}

	resp.Usage.LogCost(c.model, "oracle")
	return resp.Text()
}

func (c *Client) InvokeJSON(ctx context.Context, prompt, contextText string, out any) bool {
	answer := c.Invoke(ctx, prompt, contextText)
	return DecodeJSON(answer, out)
}

// DecodeJSON parses an oracle answer as strict JSON, tolerating markdown
// code fences around the payload. Returns false on any validation failure.
func DecodeJSON(answer string, out any) bool {
	s := strings.TrimSpace(answer)
	if s == "" {
		return false
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if err := json.Unmarshal([]byte(s), out); err != nil {
		zap.L().Debug("oracle: answer is not valid JSON", zap.Error(err))
		return false
	}
	return true
}
