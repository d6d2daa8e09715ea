package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/byxorna/stickies/pkg/app"
	"github.com/byxorna/stickies/pkg/host"
	"github.com/byxorna/stickies/pkg/host/ws"
	"github.com/byxorna/stickies/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	serveFlags = struct {
		Addr string
	}{}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured notes to remote stickies over a websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Remote != "" {
				return errors.New("serve needs local storage, not a remote")
			}
			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logs, err := logger.New().Level(level).Pretty(true).Make()
			if err != nil {
				return err
			}
			log := logs.Logger

			backend, err := app.OpenBackend(cfg, log)
			if err != nil {
				return err
			}
			defer backend.Close()

			mux := http.NewServeMux()
			mux.Handle(ws.Path, ws.NewServer(host.NewRouter(backend, log), log.With().Str("component", "ws").Logger()))
			srv := &http.Server{Addr: serveFlags.Addr, Handler: mux}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() {
				log.Info().Str("addr", serveFlags.Addr).Str("storage", backend.StoragePath()).Msg("serving notes")
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				return fmt.Errorf("listener stopped: %w", err)
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveFlags.Addr, "addr", "localhost:7777", "address to listen on")
	root.AddCommand(serveCmd)
}
