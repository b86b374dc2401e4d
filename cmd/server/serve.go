package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dracory/slidebase"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	port           int
	basePath       string
	apiURL         string
	apiTimeout     time.Duration
	fileManagement bool
	unionColumns   bool
	timezone       string
	sessionIdle    time.Duration
}

func newServeCmd(logger func() *slog.Logger) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin view",
		Example: `  # Browse the backend on localhost:5000
  slidebase serve

  # Read-only view of a remote backend
  slidebase serve --api-url https://db.example --file-management=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := slidebase.LoadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.HTTPPort = opts.port
			}
			if flags.Changed("base") {
				cfg.BasePath = opts.basePath
			}
			if flags.Changed("api-url") {
				cfg.APIBaseURL = opts.apiURL
			}
			if flags.Changed("api-timeout") {
				cfg.APITimeout = opts.apiTimeout
			}
			if flags.Changed("file-management") {
				cfg.FileManagement = opts.fileManagement
			}
			if flags.Changed("union-columns") {
				cfg.UnionColumns = opts.unionColumns
			}
			if flags.Changed("timezone") {
				cfg.DisplayTimezone = opts.timezone
			}
			if err := slidebase.Validate(cfg); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			log := logger()
			app := slidebase.New(cfg, slidebase.WithLogger(log), slidebase.WithSessionIdle(opts.sessionIdle))

			mux := http.NewServeMux()
			mux.Handle(cfg.BasePath, app.Handler())

			addr := fmt.Sprintf(":%d", cfg.HTTPPort)
			log.Info("slidebase listening",
				slog.String("addr", addr),
				slog.String("base", cfg.BasePath),
				slog.String("api", cfg.APIBaseURL),
				slog.Bool("file_management", cfg.FileManagement))

			return run(cmd.Context(), log, addr, slidebase.RequestLogger(log, mux))
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "HTTP port (env HTTP_PORT)")
	cmd.Flags().StringVar(&opts.basePath, "base", "", "Mount path (env BASE_URL)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "Backend base URL (env API_BASE_URL)")
	cmd.Flags().DurationVar(&opts.apiTimeout, "api-timeout", 0, "Backend request timeout, 0 disables (env API_TIMEOUT)")
	cmd.Flags().BoolVar(&opts.fileManagement, "file-management", true, "Enable upload, delete and clear (env FILE_MANAGEMENT)")
	cmd.Flags().BoolVar(&opts.unionColumns, "union-columns", false, "Build headers from every record (env UNION_COLUMNS)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "IANA zone for upload times (env DISPLAY_TIMEZONE)")
	cmd.Flags().DurationVar(&opts.sessionIdle, "session-idle", slidebase.DefaultSessionIdle, "Drop browser sessions unused for this long, 0 keeps them")
	return cmd
}

// run serves handler on addr and shuts down gracefully when ctx is cancelled.
func run(ctx context.Context, log *slog.Logger, addr string, handler http.Handler) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return egctx },
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down", slog.String("addr", addr))
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
