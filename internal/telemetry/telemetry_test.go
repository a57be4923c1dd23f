package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledTelemeterCallsThrough(t *testing.T) {
	t.Parallel()

	tlm, err := telemetry.NewTelemeter(context.Background(), "kiln", "test", nil, &telemetry.Options{})
	require.NoError(t, err)
	assert.False(t, tlm.Enabled())

	called := false
	err = tlm.Collect(context.Background(), "run", nil, func(ctx context.Context) error {
		called = true
		assert.Empty(t, telemetry.TraceParentFromContext(ctx))

		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	require.NoError(t, tlm.Shutdown(context.Background()))
}

func TestConsoleExporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	tlm, err := telemetry.NewTelemeter(context.Background(), "kiln", "test", &buf, &telemetry.Options{
		TraceExporter: "console",
		TraceParent:   "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	require.NoError(t, err)
	require.True(t, tlm.Enabled())

	var traceParent string

	expectedErr := errors.New("task failed")

	err = tlm.Collect(context.Background(), "task", map[string]any{"task.name": "build"}, func(ctx context.Context) error {
		traceParent = telemetry.TraceParentFromContext(ctx)
		return expectedErr
	})
	require.ErrorIs(t, err, expectedErr)

	assert.Regexp(t, `^00-4bf92f3577b34da6a3ce929d0e0e4736-[0-9a-f]{16}-01$`, traceParent)
	assert.NotContains(t, traceParent, "00f067aa0ba902b7")

	require.NoError(t, tlm.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"task"`)
	assert.Contains(t, buf.String(), "task failed")
}

func TestParseTraceParent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value       string
		sampled     bool
		expectedErr bool
	}{
		{"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", true, false},
		{"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00", false, false},
		{"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7", false, true},
		{"00-zz-00f067aa0ba902b7-01", false, true},
		{"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-xx", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			spanContext, err := telemetry.ParseTraceParent(tc.value)
			if tc.expectedErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, spanContext.IsValid())
			assert.Equal(t, tc.sampled, spanContext.IsSampled())
		})
	}
}

func TestUnsupportedExporter(t *testing.T) {
	t.Parallel()

	_, err := telemetry.NewTelemeter(context.Background(), "kiln", "test", nil, &telemetry.Options{TraceExporter: "zipkin"})
	require.Error(t, err)

	_, err = telemetry.NewTelemeter(context.Background(), "kiln", "test", nil, &telemetry.Options{TraceExporter: "http"})
	require.Error(t, err)
}
