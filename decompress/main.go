package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fumin/camzip"
	"github.com/fumin/camzip/internal/flags"
)

var tableFlag = &cli.StringFlag{
	Name:  "table",
	Usage: "context table used to compress a .czc file",
}

var app = flags.NewApp("arithmetic coding decompressor")

func init() {
	app.ArgsUsage = "filename.cza|filename.czc"
	app.Flags = append([]cli.Flag{tableFlag}, flags.Common...)
	app.Action = decompress
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func decompress(ctx *cli.Context) error {
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
	opts := flags.Options(cfg, logger, "arithmetic decoded")

	base := strings.TrimSuffix(name, filepath.Ext(name))
	// '.cuz' so that the original is not overwritten.
	outfile := base + ".cuz"

	in, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer in.Close()

	buf := bytes.NewBuffer(nil)
	switch filepath.Ext(name) {
	case ".cza":
		pf, err := os.Open(base + ".czp")
		if err != nil {
			return errors.Wrap(err, "")
		}
		defer pf.Close()
		h, err := camzip.ReadStaticHeader(pf)
		if err != nil {
			return errors.Wrap(err, pf.Name())
		}
		if err := camzip.Decompress(buf, in, h, opts...); err != nil {
			return errors.Wrap(err, "")
		}
	case ".czc":
		path := ctx.String(tableFlag.Name)
		if path == "" {
			return errors.Errorf("%s needs --%s", name, tableFlag.Name)
		}
		t, err := readTable(path)
		if err != nil {
			return errors.Wrap(err, "")
		}
		hf, err := os.Open(base + ".czh")
		if err != nil {
			return errors.Wrap(err, "")
		}
		defer hf.Close()
		h, err := camzip.ReadContextHeader(hf)
		if err != nil {
			return errors.Wrap(err, hf.Name())
		}
		if err := camzip.DecompressContext(buf, in, t, h, opts...); err != nil {
			return errors.Wrap(err, "")
		}
	default:
		return errors.Errorf("unknown compression method of %s", name)
	}

	if err := os.WriteFile(outfile, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "")
	}
	logger.Info("decompressed", zap.String("file", outfile), zap.Int("bytes", buf.Len()))
	return nil
}

func readTable(path string) (*camzip.ContextTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	t, err := camzip.ReadTable(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return t, nil
}
