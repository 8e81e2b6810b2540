// cmd/mstore/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/tamzrod/mstore/internal/config"
	"github.com/tamzrod/mstore/internal/logging"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML configuration file; without it only MSTORE_* variables are used",
		EnvVars: []string{"MSTORE_CONFIG"},
	}
	busFlag = &cli.StringFlag{
		Name:  "bus",
		Usage: `overrides store.bus ("/dev/i2c-1", "sim", "sim:<image>")`,
	}
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mstore:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "mstore",
		Usage:  "message store on a two-block I2C EEPROM",
		Writer: out,
		Flags:  []cli.Flag{configFlag, busFlag},
		Before: setup,
		After: func(ctx *cli.Context) error {
			if rt, ok := ctx.App.Metadata["runtime"].(*runtime); ok {
				_ = rt.log.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			statsCommand,
			countCommand,
			writesCommand,
			lengthCommand,
			readCommand,
			writeCommand,
			storeCommand,
			clearCommand,
			clearAllCommand,
			smashCommand,
			smashAllCommand,
			dumpCommand,
			meterCommand,
			drainCommand,
			monitorCommand,
		},
	}
}

// runtime is what every command shares once flags are parsed.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
}

func getRuntime(ctx *cli.Context) *runtime {
	return ctx.App.Metadata["runtime"].(*runtime)
}

// setup loads, validates and normalizes config and builds the logger.
func setup(ctx *cli.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		return err
	}
	if b := ctx.String(busFlag.Name); b != "" {
		cfg.Store.Bus = b
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	lc := logging.DefaultConfig()
	lc.Format = cfg.Log.Format
	lc.Level = cfg.Log.Level
	log, err := logging.New(lc)
	if err != nil {
		return err
	}

	if ctx.App.Metadata == nil {
		ctx.App.Metadata = map[string]interface{}{}
	}
	ctx.App.Metadata["runtime"] = &runtime{cfg: cfg, log: log}
	return nil
}
