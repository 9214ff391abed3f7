package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// exit is replaced in tests.
var exit = os.Exit

// Context creates a context that is canceled when an OS interrupt signal is
// received. The run then stops before its next identifier and flushes what it
// buffered. A second signal exits immediately with status 1.
func Context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("Received termination signal, starting graceful shutdown...")
			cancel()
		case <-ctx.Done():
			return
		}
		sig := <-sigChan
		log.Error().Str("signal", sig.String()).Msg("Received second signal, exiting")
		exit(1)
	}()

	return ctx, cancel
}
