package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "passthrough"
	app.Usage = "inspect interaction permissions of the Passthrough contract"
	app.Version = "0.2.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to the YAML configuration file",
			EnvVar: "PASSTHROUGH_CONFIG",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		mirrorCommand(),
		canExecuteCommand(),
		listCommand(),
	}
	return app
}

// newLogger builds console logger writing to stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// env groups resources shared by commands.
type env struct {
	log *zap.Logger
	cfg *Config
}

func newEnv(c *cli.Context) (*env, error) {
	log, err := newLogger(c.GlobalBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	return &env{log: log, cfg: cfg}, nil
}
