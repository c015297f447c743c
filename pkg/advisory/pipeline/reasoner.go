package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/llm"

	"github.com/avast/retry-go/v4"
)

// Call is one bounded request to the reasoning service.
type Call struct {
	Stage    StageName
	Messages []llm.Message
	Timeout  time.Duration
	JSON     bool
}

// NewCall builds a call from a typed payload.
func NewCall(p Payload, timeout time.Duration) Call {
	return Call{Stage: p.Stage(), Messages: p.Messages(), Timeout: timeout}
}

// Reasoner runs one stage call. Implementations must honour Timeout and
// return an error rather than a partial answer.
type Reasoner interface {
	Invoke(ctx context.Context, call Call) (string, error)
}

// LLMReasoner backs stages with an LLM provider. Server errors are retried
// within the stage deadline; a deadline is never retried here because the
// orchestrator owns the cheaper fallback.
type LLMReasoner struct {
	provider llm.LLMProvider
	attempts uint
	delay    time.Duration
	logger   logger.ILogger
}

func NewLLMReasoner(provider llm.LLMProvider, log logger.ILogger) *LLMReasoner {
	return &LLMReasoner{provider: provider, attempts: 2, delay: 500 * time.Millisecond, logger: log}
}

func (r *LLMReasoner) Invoke(ctx context.Context, call Call) (string, error) {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	var opts []llm.Option
	if call.JSON {
		opts = append(opts, llm.WithJSON())
	}

	var out string
	err := retry.Do(
		func() error {
			res, err := r.provider.Chat(ctx, call.Messages, opts...)
			if err != nil {
				return err
			}
			out = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && llm.IsTransient(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn(logModule, "Retrying stage call", map[string]interface{}{
				"stage":   call.Stage,
				"attempt": n + 1,
				"error":   err.Error(),
			})
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return "", errorsx.Wrap(fmt.Errorf("stage %s: %w", call.Stage, err), errorsx.ReasonTransientUpstream)
	}
	if strings.TrimSpace(out) == "" {
		return "", errorsx.Wrap(fmt.Errorf("stage %s: empty response", call.Stage), errorsx.ReasonTransientUpstream)
	}
	return out, nil
}
