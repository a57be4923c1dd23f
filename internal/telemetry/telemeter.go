// Package telemetry provides a way to collect traces of build runs and tasks.
package telemetry

import (
	"context"
	"io"

	"github.com/kilnworks/kiln/internal/errors"
)

// Telemeter collects telemetry. The zero value collects nothing.
type Telemeter struct {
	*Tracer
}

// NewTelemeter initializes the telemetry collector.
func NewTelemeter(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Telemeter, error) {
	tracer, err := NewTracer(ctx, appName, appVersion, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	return &Telemeter{
		Tracer: tracer,
	}, nil
}

// Enabled returns true if spans are exported.
func (tlm *Telemeter) Enabled() bool {
	return tlm != nil && tlm.Tracer != nil && tlm.Tracer.provider != nil
}

// Shutdown flushes pending spans and shuts the provider down.
func (tlm *Telemeter) Shutdown(ctx context.Context) error {
	if !tlm.Enabled() {
		return nil
	}

	if err := tlm.Tracer.provider.Shutdown(ctx); err != nil {
		return errors.New(err)
	}

	tlm.Tracer.provider = nil

	return nil
}

// Collect collects telemetry from function execution.
func (tlm *Telemeter) Collect(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tlm == nil {
		return fn(ctx)
	}

	return tlm.Trace(ctx, name, attrs, fn)
}
