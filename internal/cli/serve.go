package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/druedada/projecte-final/internal/config"
	"github.com/druedada/projecte-final/internal/httpapi"
	"github.com/druedada/projecte-final/internal/observability/jsonlog"
	"github.com/druedada/projecte-final/internal/store"
	"github.com/druedada/projecte-final/internal/task"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if port > 0 {
				cfg.Server.Port = port
			}
			return Serve(cmd.Context(), cfg, cmd.ErrOrStderr(), nil)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")
	return cmd
}

// NewLoggers returns the process logger for the configured format. The
// structured logger is nil for text output.
func NewLoggers(cfg config.LogConfig, w io.Writer) (*log.Logger, *jsonlog.Logger) {
	if cfg.Format == "json" {
		jl := jsonlog.New(w)
		return jl.Std(), jl
	}
	return log.New(w, "", log.LstdFlags), nil
}

// NewHandler opens the configured store and builds the API handler on top
// of it. The returned func closes the store.
func NewHandler(ctx context.Context, cfg config.Config, logger *log.Logger, jl *jsonlog.Logger) (http.Handler, func() error, error) {
	repo, closeStore, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewServer(task.NewService(repo), httpapi.Options{
		APIPrefix:      cfg.Server.APIPrefix,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
		JSONLogger:     jl,
	})
	return handler, closeStore, nil
}

// Serve runs the API until ctx is canceled, then drains in-flight requests.
// ready, when set, receives the bound address once the listener is up.
func Serve(ctx context.Context, cfg config.Config, logOut io.Writer, ready func(addr string)) error {
	logger, jl := NewLoggers(cfg.Log, logOut)

	handler, closeStore, err := NewHandler(ctx, cfg, logger, jl)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Printf("close store: %v", err)
		}
	}()

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s (store=%s prefix=%s)", ln.Addr(), cfg.Store.Driver, cfg.Server.APIPrefix)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("bye")
	return nil
}
