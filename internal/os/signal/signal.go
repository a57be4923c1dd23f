// Package signal provides convenience methods for intercepting OS signals.
package signal

import (
	"context"
	"os"
	"os/signal"
)

// NotifyFunc is a callback function for Notifier.
type NotifyFunc func(sig os.Signal)

// NotifierWithContext calls `notifyFn` each time one of the given signals is received, until ctx is done.
func NotifierWithContext(ctx context.Context, notifyFn NotifyFunc, sigs ...os.Signal) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)

	go func() {
		defer signal.Stop(sigCh)

		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				notifyFn(sig)
			}
		}
	}()
}
