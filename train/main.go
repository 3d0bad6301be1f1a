package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fumin/camzip"
	"github.com/fumin/camzip/internal/flags"
)

var (
	contextLensFlag = &cli.IntSliceFlag{
		Name:  "k",
		Usage: "context lengths to train, one table each (default: the configured context length)",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "output file name pattern, %d is replaced by the context length",
		Value: "context%d.czt",
	}
)

var app = flags.NewApp("trains context tables for the contextual arithmetic coder")

func init() {
	app.ArgsUsage = "corpus files..."
	app.Flags = append([]cli.Flag{contextLensFlag, outFlag, flags.ContextLenFlag}, flags.Common...)
	app.Action = train
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func train(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
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

	corpus, err := readCorpus(ctx.Args().Slice())
	if err != nil {
		return errors.Wrap(err, "")
	}
	ks := ctx.IntSlice(contextLensFlag.Name)
	if len(ks) == 0 {
		ks = []int{cfg.ContextLen}
	}

	opts := append(cfg.Options(), camzip.WithLogger(logger))
	tables, err := camzip.TrainAll(corpus, ks, opts...)
	if err != nil {
		return errors.Wrap(err, "")
	}
	for _, t := range tables {
		name := fmt.Sprintf(ctx.String(outFlag.Name), t.ContextLen())
		if err := writeTable(name, t); err != nil {
			return errors.Wrap(err, "")
		}
		logger.Info("trained", zap.String("file", name), zap.Int("k", t.ContextLen()), zap.Int("contexts", t.Len()))
	}
	return nil
}

func readCorpus(names []string) ([]byte, error) {
	rs := make([]io.Reader, 0, len(names))
	for _, name := range names {
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		defer f.Close()
		rs = append(rs, f)
	}
	corpus, err := camzip.ConcatCorpus(rs...)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return corpus, nil
}

func writeTable(name string, t *camzip.ContextTable) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := camzip.WriteTable(f, t); err != nil {
		f.Close()
		return errors.Wrap(err, "")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
