package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Host     string
	Port     int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve --db <path>",
		Short: "Start the HTTP API over a database",
		Long: `Serve captains, suggestions, moves and applies over HTTP for a hosting
UI. The database must already hold a floor (see "expo import").

Host, port and shutdown timeout come from the server section of the config
file; --host and --port override them.

Example:
  expo serve --db ./expo.db --port 8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database.path from config)")
	cmd.Flags().StringVar(&opts.Host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&opts.Port, "port", -1, "listen port (overrides server.port)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()
	cfg := opts.config()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		return fail(formatter, &cliError{Code: ErrCodeUsage, Exit: ExitCommandError, Message: "--db is required"})
	}

	serverCfg := cfg.Server
	if opts.Host != "" {
		serverCfg.Host = opts.Host
	}
	if opts.Port >= 0 {
		serverCfg.Port = opts.Port
	}

	logger.Info("opening database", "path", dbPath)
	st, err := openStore(dbPath)
	if err != nil {
		return fail(formatter, err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	srv, err := server.New(st, cfg.Estimator.Engine(), logger, serverCfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create server", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(formatter.GetErrWriter(), "Serving %s on %s. Press Ctrl-C to stop.\n", dbPath, serverCfg.Addr())

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
