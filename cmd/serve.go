package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stove_automation/internal/handlers"
	"stove_automation/internal/logger"
	"stove_automation/internal/server"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	// context for background goroutines
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Cron.Secret == "" {
		a.log.Warnw("cron_secret_empty", "hint", "set cron.secret or CRON_SECRET; protected routes reject every request")
	}

	apiHandler := handlers.NewHandler(a.services, a.log.Named("http"), a.cfg.Cron.Secret)

	// in-process ticker for deployments without an external cron
	if tick := a.cfg.Scheduler.Tick; tick > 0 {
		go a.services.Ticker.Run(ctx, tick)
		a.log.Infow("ticker_started", "tick", tick.String())
	}

	srv := &server.Server{}
	errCh := runHTTPServer(srv, a.cfg.Port, apiHandler)
	select {
	case <-srv.Ready():
		a.log.Infow("http_server_listening", "addr", srv.Addr().String())
	case err := <-errCh:
		return err
	}

	return waitForShutdown(cancel, srv, errCh, a.log)
}

// runHTTPServer runs the HTTP server in a separate goroutine. The returned
// channel receives the error that stopped it, if any.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			errCh <- err
		}
	}()
	return errCh
}

// waitForShutdown blocks until a termination signal or a server failure, then
// performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, errCh <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		log.Infow("shutting_down_server")
	case err := <-errCh:
		log.Errorw("http_server_failed", "err", err)
		cancel()
		return err
	}

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server_forced_to_shutdown", "err", err)
		return err
	}
	return nil
}
