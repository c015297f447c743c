package errorsx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsFirstReason(t *testing.T) {
	base := Wrap(context.DeadlineExceeded, ReasonTransientUpstream)
	again := Wrap(fmt.Errorf("stage aggregation: %w", base), ReasonSafetyViolation)

	assert.Equal(t, ReasonTransientUpstream, Reason(again))
	assert.True(t, errors.Is(again, context.DeadlineExceeded))
}

func TestReasonOfPlainError(t *testing.T) {
	assert.Equal(t, ReasonUnknown, Reason(errors.New("boom")))
	assert.Equal(t, ReasonUnknown, Reason(nil))
	assert.Nil(t, Wrap(nil, ReasonDataAbsent))
}

func TestHasReason(t *testing.T) {
	err := Wrap(errors.New("redis down"), ReasonStoreUnavailable)
	assert.True(t, HasReason(err, ReasonStoreUnavailable))
	assert.False(t, HasReason(err, ReasonDataAbsent))
	assert.Contains(t, err.Error(), "redis down")
}
