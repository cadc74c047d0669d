package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/roivaz/commitbot/internal/logging"
)

// fakeModel is a langchaingo model with a canned behaviour.
type fakeModel struct {
	reply    string
	err      error
	block    bool
	calls    int
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestRequestSendsSystemAndUserWithJSONMode(t *testing.T) {
	m := &fakeModel{reply: `{"subject":"x","sections":[]}`}
	c := NewFromModel(m, "test", time.Second, logging.Discard())

	out, err := c.Request(context.Background(), Request{System: "sys", User: "usr", Schema: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, m.reply, out)
	assert.Equal(t, 1, m.calls)
	require.Len(t, m.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
	assert.True(t, m.opts.JSONMode)
}

func TestRequestWithoutSchemaIsPlainText(t *testing.T) {
	m := &fakeModel{reply: "summary"}
	c := NewFromModel(m, "test", time.Second, logging.Discard())
	_, err := c.Request(context.Background(), Request{System: "s", User: "u"})
	require.NoError(t, err)
	assert.False(t, m.opts.JSONMode)
}

func TestRequestTimeoutIsTyped(t *testing.T) {
	m := &fakeModel{block: true}
	c := NewFromModel(m, "test", time.Minute, logging.Discard())
	_, err := c.Request(context.Background(), Request{User: "u", Timeout: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, m.calls)
}

func TestRequestTransportFailureIsTypedAndNotRetried(t *testing.T) {
	m := &fakeModel{err: errors.New("connection refused")}
	c := NewFromModel(m, "test", time.Second, logging.Discard())
	_, err := c.Request(context.Background(), Request{User: "u"})
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, m.calls)
}

func TestRequestCallerCancelIsNotTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &fakeModel{block: true}
	c := NewFromModel(m, "test", time.Second, logging.Discard())
	_, err := c.Request(ctx, Request{User: "u"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestNewRejectsBadProviderConfig(t *testing.T) {
	_, err := New(Config{Provider: "openai", Model: "gpt-5-nano", Logger: logging.Discard()})
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = New(Config{Provider: "carrier-pigeon", Model: "m", Logger: logging.Discard()})
	assert.ErrorContains(t, err, "unknown provider")

	_, err = New(Config{Provider: "ollama", Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestNoModelProducesSchemaShapedReply(t *testing.T) {
	out, err := NoModel{}.Request(context.Background(), Request{
		User:   "Branch: main\n\n### a.go (main)\n```diff\n+x\n- removed\n### not a file\n```\n",
		Schema: []byte(`{}`),
	})
	require.NoError(t, err)

	var reply struct {
		Subject  string `json:"subject"`
		Sections []struct {
			Label string `json:"label"`
			Text  string `json:"text"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reply))
	assert.NotEmpty(t, reply.Subject)
	require.Len(t, reply.Sections, 1)
	assert.Equal(t, "Overview", reply.Sections[0].Label)
	assert.Equal(t, "- a.go (main)", reply.Sections[0].Text)
}

func TestEstimateTokensSeam(t *testing.T) {
	old := estimateTokensFunc
	estimateTokensFunc = func(text string) int { return len(text) }
	defer func() { estimateTokensFunc = old }()
	assert.Equal(t, 5, EstimateTokens("hello"))
}
