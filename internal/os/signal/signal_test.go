package signal_test

import (
	"context"
	"testing"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/signal"
	"github.com/stretchr/testify/assert"
)

func TestContextCanceledError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(signal.NewContextCanceledError(signal.InterruptSignal))

	assert.True(t, errors.IsContextCanceled(context.Cause(ctx)))

	cause := new(signal.ContextCanceledError)
	if assert.True(t, errors.As(context.Cause(ctx), &cause)) {
		assert.Equal(t, signal.InterruptSignal, cause.Signal)
	}
}
