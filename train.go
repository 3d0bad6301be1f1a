package camzip

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fumin/camzip/ac"
)

const (
	// DefaultMaxContextLen bounds context lengths, since a table may hold up to alphabet^k contexts.
	DefaultMaxContextLen = 4

	// MaxContextLenLimit is the largest bound WithMaxContextLen accepts.
	MaxContextLenLimit = 8
)

// ErrContextLength is returned for a context length outside [1, max].
var ErrContextLength = errors.New("context length out of range")

func checkContextLen(k, max int) error {
	if max < 1 || max > MaxContextLenLimit {
		return errors.Wrapf(ErrContextLength, "bound %d not in [1, %d]", max, MaxContextLenLimit)
	}
	if k < 1 || k > max {
		return errors.Wrapf(ErrContextLength, "%d not in [1, %d]", k, max)
	}
	return nil
}

// Train builds the context table of length k from corpus.
//
// Every position preceded by at least k symbols contributes one count to the next symbol under its context.
// The probabilities of a context are its counts divided by their total, in ascending symbol order.
// Contexts that never occur are left out.
// NoContext holds the distribution of single symbols over the whole corpus.
func Train(corpus []byte, k int, opts ...Option) (*ContextTable, error) {
	o := newOptions(opts)
	if err := checkContextLen(k, o.maxContextLen); err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, ac.New(ac.InvalidModel, "empty corpus")
	}

	counts := make(map[ContextKey]map[byte]uint64)
	for i := k; i < len(corpus); i++ {
		if err := o.tick(i, len(corpus)); err != nil {
			return nil, errors.Wrap(err, "")
		}
		key := keyAt(corpus, i, k)
		next, ok := counts[key]
		if !ok {
			next = make(map[byte]uint64)
			counts[key] = next
		}
		next[corpus[i]]++
	}
	o.done(len(corpus))

	unigram, err := CountFrequencies(corpus).Mapping()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	entries := make([]*ContextEntry, 0, len(counts)+1)
	entries = append(entries, &ContextEntry{Key: NoContext, Mapping: unigram})
	for key, next := range counts {
		freqs := make(Frequencies, 0, len(next))
		for _, s := range sortedSymbols(next) {
			freqs = append(freqs, Freq{Symbol: s, Count: next[s]})
		}
		m, err := freqs.Mapping()
		if err != nil {
			return nil, errors.Wrapf(err, "context %s", key)
		}
		entries = append(entries, &ContextEntry{Key: key, Mapping: m})
	}

	t, err := NewContextTable(k, entries)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	o.logger.Debug("trained context table", zap.Int("k", k), zap.Int("contexts", t.Len()), zap.Int("corpus", len(corpus)))
	return t, nil
}

// TrainAll trains one table per context length in ks, concurrently.
// The tables are returned in the order of ks.
// A ProgressFunc given in opts is called from several goroutines.
func TrainAll(corpus []byte, ks []int, opts ...Option) ([]*ContextTable, error) {
	tables := make([]*ContextTable, len(ks))
	var eg errgroup.Group
	for i, k := range ks {
		i, k := i, k
		eg.Go(func() error {
			t, err := Train(corpus, k, opts...)
			if err != nil {
				return errors.Wrapf(err, "k=%d", k)
			}
			tables[i] = t
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ConcatCorpus joins the training texts read from rs.
func ConcatCorpus(rs ...io.Reader) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	for _, r := range rs {
		if _, err := io.Copy(buf, r); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return buf.Bytes(), nil
}
