package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mchmarny/houseval/pkg/logging"
	"github.com/mchmarny/houseval/pkg/metrics"
	urfave "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20

	addressFlagName = "address"
)

func serverCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start local HTTP API",
		Action:  cmdStartServer,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:    addressFlagName,
				Aliases: []string{"a"},
				Usage:   "Address on which the server will listen (default: config server.address)",
				Sources: urfave.EnvVars("HOUSEVAL_SERVER_ADDRESS"),
			},
		},
	}
}

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)

	address := app.Config.Server.Address
	if cmd.IsSet(addressFlagName) {
		address = cmd.String(addressFlagName)
	}

	store, err := app.Store()
	if err != nil {
		return err
	}

	logger := logging.NewServerLogger(app.Config.LogLevel)
	api := &apiServer{
		app:     app,
		store:   store,
		metrics: metrics.NewRecorder(),
		logger:  logger,
	}

	s := &http.Server{
		Addr:           address,
		Handler:        api.routes(),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServer(ctx, s, logger)
}

// runServer serves until ctx is done, then shuts s down gracefully.
func runServer(ctx context.Context, s *http.Server, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", "address", "http://"+s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownWaitSeconds*time.Second)
		defer cancel()

		if err := s.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error shutting down server", logging.Err(err))
			return fmt.Errorf("shutting down server: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
