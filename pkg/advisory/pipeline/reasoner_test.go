package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	calls   atomic.Int32
	replies []func(ctx context.Context) (string, error)
}

func (p *scriptedProvider) Chat(ctx context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	n := int(p.calls.Add(1)) - 1
	if n >= len(p.replies) {
		n = len(p.replies) - 1
	}
	return p.replies[n](ctx)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testReasoner(p llm.LLMProvider) *LLMReasoner {
	r := NewLLMReasoner(p, logger.NewNopLogger())
	r.delay = time.Millisecond
	return r
}

func TestLLMReasoner_RetriesServerErrors(t *testing.T) {
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) { return "", &llm.StatusError{Provider: "gemini", StatusCode: 503} },
		func(context.Context) (string, error) { return `{"questions":["a"]}`, nil },
	}}

	out, err := testReasoner(p).Invoke(context.Background(), Call{Stage: StageDecomposition, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, `{"questions":["a"]}`, out)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestLLMReasoner_DoesNotRetryClientErrors(t *testing.T) {
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) { return "", &llm.StatusError{Provider: "gemini", StatusCode: 400} },
	}}

	_, err := testReasoner(p).Invoke(context.Background(), Call{Stage: StageGeneration, Timeout: time.Second})
	require.Error(t, err)
	assert.EqualValues(t, 1, p.calls.Load())
	assert.Equal(t, errorsx.ReasonTransientUpstream, errorsx.Reason(err))
}

func TestLLMReasoner_StageDeadline(t *testing.T) {
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}}

	start := time.Now()
	_, err := testReasoner(p).Invoke(context.Background(), Call{Stage: StageAggregation, Timeout: 30 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestLLMReasoner_EmptyReplyIsAnError(t *testing.T) {
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) { return "  \n", nil },
	}}

	_, err := testReasoner(p).Invoke(context.Background(), Call{Stage: StageFinalAudit})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "empty response"))
}
