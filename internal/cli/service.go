package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/tablewatch/internal/presentation/tui"
	httpAdapter "github.com/aretw0/tablewatch/pkg/adapters/http"
	"github.com/aretw0/tablewatch/pkg/domain"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures RunService.
type ServeOptions struct {
	// ListenAddr is the status API address. Empty disables the HTTP server.
	ListenAddr string
	// Out receives per-tick status lines. Nil disables them.
	Out io.Writer
	// Ready, when set, receives the bound listener address once the API accepts connections.
	Ready func(addr string)
}

// RunService runs the scheduler and the status API until ctx is cancelled.
func RunService(ctx context.Context, app *App, opts ServeOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Out != nil {
		ch, unsubscribe := app.Streams.Subscribe()
		defer unsubscribe()
		go printEvaluations(ctx, opts.Out, ch)
	}

	var srv *http.Server
	serverErrors := make(chan error, 1)
	if opts.ListenAddr != "" {
		ln, err := net.Listen("tcp", opts.ListenAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", opts.ListenAddr, err)
		}
		srv = httpAdapter.NewServer(opts.ListenAddr, app.Handler())
		go func() {
			app.Logger.Info("Status API listening", "address", ln.Addr().String())
			serverErrors <- srv.Serve(ln)
		}()
		if opts.Ready != nil {
			opts.Ready(ln.Addr().String())
		}
	}

	schedDone := make(chan error, 1)
	go func() {
		schedDone <- app.Scheduler.Run(ctx)
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("status API: %w", err)
		}
		cancel()
		<-schedDone
	case err := <-schedDone:
		runErr = err
	case <-ctx.Done():
		<-schedDone
	}

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			_ = srv.Close()
		}
	}
	app.Logger.Info("Service stopped")
	return runErr
}

func printEvaluations(ctx context.Context, w io.Writer, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var eval domain.Evaluation
			if err := decodeEvaluation(msg, &eval); err != nil {
				continue
			}
			fmt.Fprintln(w, tui.StatusLine(w, eval))
		}
	}
}
