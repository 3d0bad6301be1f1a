package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fumin/camzip"
	"github.com/fumin/camzip/internal/flags"
)

var tableFlag = &cli.StringFlag{
	Name:  "table",
	Usage: "context table written by train; selects the contextual method",
}

var app = flags.NewApp("arithmetic coding compressor")

func init() {
	app.ArgsUsage = "filename"
	app.Flags = append([]cli.Flag{tableFlag}, flags.Common...)
	app.Action = compress
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func compress(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return cli.ShowAppHelp(ctx)
	}
	cfg, err := flags.Config(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger, err := flags.Logger(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer logger.Sync()
	opts := flags.Options(cfg, logger, "arithmetic encoded")

	if path := ctx.String(tableFlag.Name); path != "" {
		return compressContext(name, path, logger, opts)
	}

	buf := bytes.NewBuffer(nil)
	h, err := camzip.Compress(buf, name, opts...)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(name+".cza", buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "")
	}
	pf, err := os.Create(name + ".czp")
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer pf.Close()
	if err := camzip.WriteStaticHeader(pf, h); err != nil {
		return errors.Wrap(err, "")
	}
	n := int(h.Frequencies.Total())
	logger.Info("compressed", zap.String("file", name), zap.Int("symbols", n), zap.Int("bytes", buf.Len()),
		zap.Float64("bitsPerByte", camzip.Rate(8*buf.Len(), n)))
	return nil
}

func compressContext(name, tablePath string, logger *zap.Logger, opts []camzip.Option) error {
	tf, err := os.Open(tablePath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer tf.Close()
	t, err := camzip.ReadTable(tf)
	if err != nil {
		return errors.Wrap(err, tablePath)
	}

	buf := bytes.NewBuffer(nil)
	h, err := camzip.CompressContext(buf, name, t, opts...)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(name+".czc", buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "")
	}
	hf, err := os.Create(name + ".czh")
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer hf.Close()
	if err := camzip.WriteContextHeader(hf, h); err != nil {
		return errors.Wrap(err, "")
	}
	logger.Info("compressed", zap.String("file", name), zap.Int("context", h.ContextLen), zap.Int("symbols", h.Symbols),
		zap.Int("bytes", buf.Len()), zap.Float64("bitsPerByte", camzip.Rate(8*buf.Len(), h.Symbols)))
	return nil
}
