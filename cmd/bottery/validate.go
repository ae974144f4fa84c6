package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/engines"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/urfave/cli/v3"
)

var validateCmd = &cli.Command{
	Name:    "validate",
	Aliases: []string{"lint"},
	Usage:   "Validate a settings file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the settings file",
		},
	},
	Action: validateAction,
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		if cmd.Args().Len() < 1 {
			return errors.New("settings file path required (use the --config flag, or provide it as a positional argument)")
		}
		configPath = cmd.Args().Get(0)
	}

	cfg, err := loadAndCheck(configPath)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Settings file %s is valid\n\n", configPath)
	fmt.Fprintln(out, cfg)
	return nil
}

// loadAndCheck loads the settings and checks that the handler set and every
// platform engine are known to this binary.
func loadAndCheck(configPath string) (*config.Config, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := checkReferences(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}

func checkReferences(cfg *config.Config) error {
	errz := []error{}

	if _, err := handlers.NewDefaultRegistry().Lookup(cfg.Handlers); err != nil {
		errz = append(errz, err)
	}

	reg, err := engines.NewRegistry()
	if err != nil {
		return err
	}
	for _, p := range cfg.Platforms {
		if _, err := reg.Lookup(p.Engine); err != nil {
			errz = append(errz, fmt.Errorf("platform '%s': %w", p.Name, err))
		}
	}
	return errors.Join(errz...)
}
