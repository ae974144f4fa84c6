package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/engines"
	"github.com/atlanticdynamic/bottery/internal/fancy"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/orchestrator"
	"github.com/atlanticdynamic/bottery/internal/resources"
	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"
)

const readyPollInterval = 50 * time.Millisecond

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Start every configured platform and serve until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    "Path to the TOML or YAML settings file",
			Required: true,
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port for the HTTP listener, overrides the settings file",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Log level (trace, debug, info, warn, error), overrides the settings file",
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAndCheck(cmd.String("config"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	if port := cmd.Int("port"); port != 0 {
		cfg.Server.Port = int(port)
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Logging.Level = config.LogLevel(level)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Errorf("%w: %w", config.ErrFailedToValidateConfig, err), 1)
	}

	logger, closer, err := SetupLogger(cfg.Logging)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(cmd.Root().ErrWriter, "failed to close log output: %v\n", err)
		}
	}()

	if err := runBot(ctx, cfg, logger, cmd.Root().Writer); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

// runBot starts the orchestrator under a supervisor and blocks until a
// signal, ctx cancellation or a crash. A crash is returned as an error.
func runBot(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	fmt.Fprintln(out, fancy.Banner(time.Now(), "bottery", Version))

	set, err := handlers.NewDefaultRegistry().Lookup(cfg.Handlers)
	if err != nil {
		return err
	}
	reg, err := engines.NewRegistry()
	if err != nil {
		return err
	}

	res := resources.New(
		resources.WithLogger(logger.WithGroup("resources")),
		resources.WithClientTimeout(cfg.Network.Timeout.AsDuration()),
		resources.WithUserAgent(cfg.Network.UserAgent),
	)

	opts := append(orchestrator.ConfigOptions(cfg),
		orchestrator.WithLogHandler(logger.Handler()),
		orchestrator.WithEngineRegistry(reg),
		orchestrator.WithHandlers(set),
		orchestrator.WithResources(res),
	)
	orch, err := orchestrator.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go announceReady(ctx, orch, out)

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(logger.Handler()),
		supervisor.WithRunnables(&crashStopper{Orchestrator: orch, cancel: cancel}),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	superErr := super.Run()

	if err := orch.Err(); err != nil {
		fmt.Fprintln(out, fancy.ErrorText(err.Error()))
		return err
	}
	if superErr != nil {
		return fmt.Errorf("failed to run bots: %w", superErr)
	}

	logger.Info("Shutdown complete")
	return nil
}

// crashStopper cancels the supervisor context when the orchestrator run
// ends in an error, so the process exits instead of idling.
type crashStopper struct {
	*orchestrator.Orchestrator
	cancel context.CancelFunc
}

func (c *crashStopper) Run(ctx context.Context) error {
	err := c.Orchestrator.Run(ctx)
	if err != nil {
		c.cancel()
	}
	return err
}

func announceReady(ctx context.Context, orch *orchestrator.Orchestrator, out io.Writer) {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if orch.IsRunning() {
				fmt.Fprintln(out, "Quit the bot with CONTROL-C.")
				return
			}
		}
	}
}
