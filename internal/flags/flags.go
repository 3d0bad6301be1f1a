// Package flags holds the command line flags and setup shared by the camzip tools.
package flags

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fumin/camzip"
)

var (
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	PrecisionFlag = &cli.UintFlag{
		Name:  "precision",
		Usage: "bit width of the arithmetic coder",
		Value: camzip.DefaultConfig.Precision,
	}
	ContextLenFlag = &cli.IntFlag{
		Name:  "context",
		Usage: "number of preceding symbols forming a context",
		Value: camzip.DefaultConfig.ContextLen,
	}
	MaxContextLenFlag = &cli.IntFlag{
		Name:  "maxcontext",
		Usage: "largest accepted context length",
		Value: camzip.DefaultConfig.MaxContextLen,
	}
	ProgressFlag = &cli.IntFlag{
		Name:  "progress",
		Usage: "symbols between progress reports, 0 to disable",
		Value: camzip.DefaultConfig.ProgressInterval,
	}
	VerboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "verbosity",
	}
)

// Common are the flags every tool accepts.
var Common = []cli.Flag{
	ConfigFlag,
	PrecisionFlag,
	MaxContextLenFlag,
	ProgressFlag,
	VerboseFlag,
}

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	app := cli.NewApp()
	app.Usage = usage
	app.EnableBashCompletion = true
	return app
}

// Logger returns a development logger, at debug level when --verbose is set.
func Logger(ctx *cli.Context) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if ctx.Bool(VerboseFlag.Name) {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return logger, nil
}

// Config builds the configuration: defaults, then the config file, then the flags that are set.
func Config(ctx *cli.Context) (camzip.Config, error) {
	cfg := camzip.DefaultConfig
	if path := ctx.String(ConfigFlag.Name); path != "" {
		if err := camzip.LoadConfig(path, &cfg); err != nil {
			return camzip.Config{}, errors.Wrap(err, "")
		}
	}
	if ctx.IsSet(PrecisionFlag.Name) {
		cfg.Precision = ctx.Uint(PrecisionFlag.Name)
	}
	if ctx.IsSet(ContextLenFlag.Name) {
		cfg.ContextLen = ctx.Int(ContextLenFlag.Name)
	}
	if ctx.IsSet(MaxContextLenFlag.Name) {
		cfg.MaxContextLen = ctx.Int(MaxContextLenFlag.Name)
	}
	if ctx.IsSet(ProgressFlag.Name) {
		cfg.ProgressInterval = ctx.Int(ProgressFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return camzip.Config{}, errors.Wrap(err, "")
	}
	return cfg, nil
}

// Options returns the coding options of cfg, with progress reported to logger under name.
func Options(cfg camzip.Config, logger *zap.Logger, name string) []camzip.Option {
	opts := append(cfg.Options(), camzip.WithLogger(logger))
	if cfg.ProgressInterval > 0 {
		opts = append(opts, camzip.WithProgress(cfg.ProgressInterval, func(done, total int) {
			var pct float64
			if total > 0 {
				pct = 100 * float64(done) / float64(total)
			}
			logger.Info(name, zap.Int("done", done), zap.Int("total", total), zap.Float64("percent", pct))
		}))
	}
	return opts
}
