package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fumin/camzip"
	"github.com/fumin/camzip/internal/flags"
)

var (
	intelligenceFlag = &cli.StringFlag{
		Name:  "i",
		Usage: "compressor measuring complexity: arithmetic or targz",
		Value: "arithmetic",
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "d",
		Usage: "data directory",
		Value: "mammals10",
	}
	atcgFlag = &cli.BoolFlag{
		Name:  "atcg",
		Usage: "measure only the nucleotides of each file",
	}
	cacheFlag = &cli.IntFlag{
		Name:  "cache",
		Usage: "number of complexities kept in memory",
		Value: 1024,
	}
)

var app = flags.NewApp("clusters files by normalized compression distance")

func init() {
	app.Flags = append([]cli.Flag{intelligenceFlag, dataDirFlag, atcgFlag, cacheFlag}, flags.Common...)
	app.Action = run
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

type measurer struct {
	intelligence string
	opts         []camzip.Option
	cacher       *lru.Cache[string, float64]
	logger       *zap.Logger
}

func run(ctx *cli.Context) error {
	cfg, err := flags.Config(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger, err := flags.Logger(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer logger.Sync()
	cacher, err := lru.New[string, float64](ctx.Int(cacheFlag.Name))
	if err != nil {
		return errors.Wrap(err, "")
	}
	m := &measurer{
		intelligence: ctx.String(intelligenceFlag.Name),
		opts:         cfg.Options(),
		cacher:       cacher,
		logger:       logger,
	}

	data, err := listFiles(ctx.String(dataDirFlag.Name))
	if err != nil {
		return errors.Wrap(err, "")
	}
	if ctx.Bool(atcgFlag.Name) {
		dir, err := ioutil.TempDir("", "atcg")
		if err != nil {
			return errors.Wrap(err, "")
		}
		defer os.RemoveAll(dir)
		if data, err = prepareSequences(dir, data); err != nil {
			return errors.Wrap(err, "")
		}
	}
	distMat, err := m.distanceMatrix(data)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := display(logger, data, distMat); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func display(logger *zap.Logger, data []string, distMat []float64) error {
	// Print data as a comma separated array.
	buf := bytes.NewBuffer(nil)
	for i, fpath := range data {
		name := filepath.Base(fpath)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := buf.WriteString(strconv.Quote(base)); err != nil {
			return errors.Wrap(err, "")
		}
		if i == len(data)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	logger.Info("names", zap.String("array", "["+buf.String()+"]"))

	// Print distance matrix as a comma separated array.
	buf.Reset()
	for i, f := range distMat {
		if _, err := buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
			return errors.Wrap(err, "")
		}
		if i == len(distMat)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	logger.Info("distances", zap.String("array", "["+buf.String()+"]"))

	return nil
}

// distance returns the normalized compression distance of the files x and y.
func (m *measurer) distance(x, y string) (float64, error) {
	xy, err := ioutil.TempFile("", filepath.Base(x)+filepath.Base(y))
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	defer os.Remove(xy.Name())
	if err := concatFiles(xy, x, y); err != nil {
		return -1, errors.Wrap(err, "")
	}

	// The concatenation is never measured twice, so it stays out of the cache.
	kxy, err := m.measure(xy.Name())
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	kx, err := m.complexity(x)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	ky, err := m.complexity(y)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return normalizedDistance(kxy, kx, ky), nil
}

func normalizedDistance(kxy, kx, ky float64) float64 {
	minxy := kx
	if ky < kx {
		minxy = ky
	}
	maxxy := kx
	if ky > kx {
		maxxy = ky
	}
	if maxxy == 0 {
		return 0
	}
	return (kxy - minxy) / maxxy
}

// complexity returns the compressed size of the input file x, cached by path.
func (m *measurer) complexity(x string) (float64, error) {
	if size, ok := m.cacher.Get(x); ok {
		return size, nil
	}
	size, err := m.measure(x)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	m.cacher.Add(x, size)
	return size, nil
}

func (m *measurer) measure(x string) (float64, error) {
	switch m.intelligence {
	case "arithmetic":
		return m.complexityArithmetic(x)
	case "targz":
		return complexityTarGz(x)
	default:
		return -1, errors.Errorf("unknown intelligence %q", m.intelligence)
	}
}

func (m *measurer) complexityArithmetic(fpath string) (float64, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := camzip.Compress(buf, fpath, m.opts...); err != nil {
		return -1, errors.Wrap(err, fpath)
	}
	return float64(buf.Len()), nil
}

func complexityTarGz(fpath string) (float64, error) {
	dst, err := ioutil.TempFile("", "complexity*.tgz")
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	dst.Close()
	defer os.Remove(dst.Name())
	if err := exec.Command("tar", "zcf", dst.Name(), fpath).Run(); err != nil {
		return -1, errors.Wrap(err, "")
	}
	info, err := os.Stat(dst.Name())
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(info.Size()), nil
}

func concatFiles(tmpf *os.File, fs ...string) error {
	for _, fpath := range fs {
		err := func(fpath string) error {
			f, err := os.Open(fpath)
			if err != nil {
				return errors.Wrap(err, "")
			}
			defer f.Close()
			if _, err := io.Copy(tmpf, f); err != nil {
				return errors.Wrap(err, "")
			}
			return nil
		}(fpath)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := tmpf.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// distanceMatrix returns the upper triangle of the distance matrix of data, row by row.
// Pairs are measured concurrently.
func (m *measurer) distanceMatrix(data []string) ([]float64, error) {
	n := len(data)
	if n < 2 {
		return nil, errors.Errorf("need at least two files, got %d", n)
	}
	mat := make([]float64, n*(n-1)/2)
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	idx := 0
	for i, dx := range data[:n-1] {
		for _, dy := range data[i+1:] {
			dx, dy, idx := dx, dy, idx
			eg.Go(func() error {
				dist, err := m.distance(dx, dy)
				if err != nil {
					return errors.Wrap(err, "")
				}
				mat[idx] = dist
				m.logger.Debug("distance", zap.String("x", dx), zap.String("y", dy), zap.Float64("ncd", dist))
				return nil
			})
			idx++
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return mat, nil
}

func listFiles(dir string) ([]string, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	data := make([]string, 0, len(files))
	for _, f := range files {
		fpath := filepath.Join(dir, f.Name())
		data = append(data, fpath)
	}
	return data, nil
}
