// Package main is the navcoordinatord CLI: load and validate a navigation
// coordinator config file, print the defaults, or run a coordinator with
// placeholder planners and no costmap, pose, or transform collaborators to
// smoke-test the startup path.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/nav-stack/navcoordinator/logging"
	"github.com/nav-stack/navcoordinator/navigation"
	"github.com/nav-stack/navcoordinator/navigation/builtin"
	"github.com/nav-stack/navcoordinator/navigation/builtin/fake"
)

const configFlag = "config"

func main() {
	app := &cli.App{
		Name:  "navcoordinatord",
		Usage: "validate and run a navigation coordinator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load coordinator configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "additionally write rotated JSON logs to `FILE`",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate-config",
				Usage:  "parse and validate a configuration file without starting the coordinator",
				Action: validateConfigAction,
			},
			{
				Name:   "defaults",
				Usage:  "print the default configuration as YAML",
				Action: defaultsAction,
			},
			{
				Name:  "run",
				Usage: "run a coordinator until interrupted, using no-op planner/costmap/pose collaborators",
				Description: `run starts a coordinator with the built-in default recovery behaviors
registered and placeholder planners from the navigation/builtin/fake package
registered under the configured planner names; this command accepts no
goals, so those planners are never called. Real deployments embed
the navigation/builtin package directly and supply their own
navigation.GlobalPlanner, navigation.LocalPlanner, and navigation.Deps
implementations; this command exists to smoke-test a config file
against the full startup path, not to drive a physical base.`,
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*navigation.Config, error) {
	path := c.String(configFlag)
	if path == "" {
		return navigation.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config file")
	}
	defer f.Close()

	cfg := navigation.DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return cfg, nil
}

func validateConfigAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(configFlag); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "config OK: global_planner=%s local_planner=%s recovery_behaviors=%d\n",
		cfg.BaseGlobalPlanner, cfg.BaseLocalPlanner, len(cfg.RecoveryBehaviors))
	return nil
}

func defaultsAction(c *cli.Context) error {
	enc := yaml.NewEncoder(c.App.Writer)
	defer enc.Close()
	return enc.Encode(navigation.DefaultConfig())
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(configFlag); err != nil {
		return err
	}

	var logger logging.Logger
	if c.Bool("debug") {
		logger = logging.NewDebugLogger("navcoordinatord")
	} else {
		logger = logging.NewLogger("navcoordinatord")
	}
	if logFile := c.String("log-file"); logFile != "" {
		const maxLogFileSizeMB = 100
		logger.AddAppender(logging.NewFileAppender(logFile, maxLogFileSizeMB))
	}

	registry := navigation.NewRegistry()
	registry.RegisterGlobalPlanner(cfg.BaseGlobalPlanner, func(string) (navigation.GlobalPlanner, error) {
		return &fake.GlobalPlanner{}, nil
	})
	registry.RegisterLocalPlanner(cfg.BaseLocalPlanner, func(string) (navigation.LocalPlanner, error) {
		return &fake.LocalPlanner{}, nil
	})
	builtin.RegisterDefaultRecoveryBehaviors(registry, nil, nil, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator, err := builtin.NewCoordinator(ctx, cfg, registry, logger, navigation.NewClock(), builtin.Deps{})
	if err != nil {
		return errors.Wrap(err, "starting coordinator")
	}
	logger.Infow("coordinator started, waiting for a goal or interrupt",
		"controllerFrequency", cfg.ControllerFrequency, "plannerFrequency", cfg.PlannerFrequency)

	<-ctx.Done()
	logger.Info("shutting down")
	return coordinator.Close(context.Background())
}
