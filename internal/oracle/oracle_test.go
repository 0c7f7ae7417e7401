package oracle

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deep-research/internal/config"
	"github.com/sells-group/deep-research/pkg/anthropic"
)

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: s}}}
}

func newTestClient(api anthropic.Client) *Client {
	return New(api, config.AnthropicConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 512, RPS: 1000})
}

func TestInvoke_ReturnsText(t *testing.T) {
	t.Parallel()

	api := &mockAnthropicClient{}
	api.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 2 && req.Messages[0].Content == "some context"
	})).Return(textResponse("an answer"), nil)

	c := newTestClient(api)
	got := c.Invoke(context.Background(), "a prompt", "some context")

	assert.Equal(t, "an answer", got)
	api.AssertExpectations(t)
}

func TestInvoke_NoContextSendsSingleMessage(t *testing.T) {
	t.Parallel()

	api := &mockAnthropicClient{}
	api.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1
	})).Return(textResponse("ok"), nil)

	c := newTestClient(api)
	assert.Equal(t, "ok", c.Invoke(context.Background(), "a prompt", ""))
}

func TestInvoke_FailureReturnsEmpty(t *testing.T) {
	t.Parallel()

	api := &mockAnthropicClient{}
	api.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, eris.New("network down"))

	c := newTestClient(api)
	assert.Empty(t, c.Invoke(context.Background(), "a prompt", ""))
}

func TestInvokeJSON_Valid(t *testing.T) {
	t.Parallel()

	api := &mockAnthropicClient{}
	api.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(`{"sufficient": true}`), nil)

	c := newTestClient(api)
	var verdict struct {
		Sufficient bool `json:"sufficient"`
	}
	ok := c.InvokeJSON(context.Background(), "validate", "summary", &verdict)

	require.True(t, ok)
	assert.True(t, verdict.Sufficient)
}

func TestInvokeJSON_MalformedReturnsFalse(t *testing.T) {
	t.Parallel()

	api := &mockAnthropicClient{}
	api.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("sorry, I cannot do that"), nil)

	c := newTestClient(api)
	var verdict struct {
		Sufficient bool `json:"sufficient"`
	}
	assert.False(t, c.InvokeJSON(context.Background(), "validate", "summary", &verdict))
	assert.False(t, verdict.Sufficient)
}

func TestDecodeJSON_Fenced(t *testing.T) {
	t.Parallel()

	var out map[string]any
	ok := DecodeJSON("```json\n{\"needs_search\": false}\n```", &out)

	require.True(t, ok)
	assert.Equal(t, false, out["needs_search"])
}

func TestDecodeJSON_Empty(t *testing.T) {
	t.Parallel()

	var out map[string]any
	assert.False(t, DecodeJSON("", &out))
	assert.False(t, DecodeJSON("   ", &out))
}
