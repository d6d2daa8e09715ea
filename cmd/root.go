package cmd

import (
	"context"
	"errors"
	_ "expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/byxorna/stickies/pkg/app"
	"github.com/byxorna/stickies/pkg/config"
	"github.com/byxorna/stickies/pkg/logger"
	"github.com/byxorna/stickies/pkg/model"
	"github.com/byxorna/stickies/pkg/notify"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flags = struct {
		ConfigFile string
		Pprof      string
		Remote     string
	}{}

	root = &cobra.Command{
		Use:   "stickies",
		Short: "Stickies is a terminal sticky-note board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logPath, err := cfg.LogPath()
			if err != nil {
				return fmt.Errorf("unable to resolve log file: %w", err)
			}
			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logs, err := logger.New().FromPath(logPath).Level(level).Make()
			if err != nil {
				return fmt.Errorf("unable to open log file %s: %w", logPath, err)
			}
			defer logs.Close()
			log := logs.Logger

			if flags.Pprof != "" {
				go func() {
					log.Info().Str("addr", flags.Pprof).Msg("listening for pprof")
					if err := http.ListenAndServe(flags.Pprof, nil); err != nil {
						log.Error().Err(err).Msg("pprof listener stopped")
					}
				}()
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			wb, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			notifier := notify.Prepare(ctx, notify.Detect(cfg.Notifications, os.Stdout, log), log)

			p := tea.NewProgram(model.New(ctx, wb, notifier, log), tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, runErr := p.Run()
			// the open note, if any, is flushed here
			closeErr := wb.Close(context.Background())
			return errors.Join(runErr, closeErr)
		},
	}
)

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().StringVarP(&flags.Remote, "remote", "r", "", "address of a `stickies serve` host to use instead of local storage")
	root.Flags().StringVar(&flags.Pprof, "pprof", "", "serve pprof and expvar on this address")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if flags.Remote != "" {
		cfg.Remote = flags.Remote
	}
	return cfg, nil
}

// cliWorkbench builds a workbench for the one-shot subcommands, logging to
// stderr. The returned func releases it.
func cliWorkbench(ctx context.Context) (*app.Workbench, zerolog.Logger, func(), error) {
	nop := zerolog.Nop()
	cfg, err := loadConfig()
	if err != nil {
		return nil, nop, nil, err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nop, nil, err
	}
	// subcommands only speak up about problems
	if level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	logs, err := logger.New().Level(level).Pretty(true).Make()
	if err != nil {
		return nil, nop, nil, err
	}

	wb, err := app.New(ctx, cfg, logs.Logger)
	if err != nil {
		return nil, nop, nil, err
	}
	if err := wb.Load(ctx); err != nil {
		_ = wb.Close(ctx)
		return nil, nop, nil, err
	}
	return wb, logs.Logger, func() {
		if err := wb.Close(ctx); err != nil {
			logs.Logger.Warn().Err(err).Msg("unable to close cleanly")
		}
	}, nil
}

func Execute() {
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
