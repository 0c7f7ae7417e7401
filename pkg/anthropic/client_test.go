package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost_KnownModel(t *testing.T) {
	t.Parallel()

	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	cost := u.EstimateCost("claude-haiku-4-5-20251001")

	// 1M input at $0.80 + 0.5M output at $4.00.
	assert.InDelta(t, 0.80+2.00, cost, 1e-9)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	t.Parallel()

	u := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, u.EstimateCost("not-a-model"))
}

func TestMessageResponse_Text(t *testing.T) {
	t.Parallel()

	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", resp.Text())
}

func TestToSDKMessages_Roles(t *testing.T) {
	t.Parallel()

	out := toSDKMessages([]Message{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	})

	assert.Len(t, out, 2)
	assert.Equal(t, "user", string(out[0].Role))
	assert.Equal(t, "assistant", string(out[1].Role))
}
