package camzip

import (
	"io"

	"github.com/golang/snappy"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/fumin/camzip/ac"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A StaticHeader travels beside the bits of a static code.
// The frequencies fix both the alphabet order and the number of symbols.
type StaticHeader struct {
	Precision   uint
	Frequencies Frequencies
}

// WriteStaticHeader writes h as JSON, keeping the order of the frequencies.
func WriteStaticHeader(w io.Writer, h StaticHeader) error {
	if err := json.NewEncoder(w).Encode(h); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// ReadStaticHeader reads a header written by WriteStaticHeader.
func ReadStaticHeader(r io.Reader) (StaticHeader, error) {
	var h StaticHeader
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return StaticHeader{}, errors.Wrap(err, "")
	}
	seen := make(map[byte]bool, len(h.Frequencies))
	for _, fr := range h.Frequencies {
		if seen[fr.Symbol] {
			return StaticHeader{}, ac.New(ac.InvalidModel, "symbol %d appears twice", fr.Symbol)
		}
		seen[fr.Symbol] = true
	}
	return h, nil
}

// A ContextHeader travels beside the bits of a contextual code.
// The bits alone do not tell how many symbols they hold.
type ContextHeader struct {
	ContextLen int
	Symbols    int
	Precision  uint
}

// WriteContextHeader writes h as JSON.
func WriteContextHeader(w io.Writer, h ContextHeader) error {
	if err := json.NewEncoder(w).Encode(h); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// ReadContextHeader reads a header written by WriteContextHeader.
func ReadContextHeader(r io.Reader) (ContextHeader, error) {
	var h ContextHeader
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return ContextHeader{}, errors.Wrap(err, "")
	}
	return h, nil
}

type conditionalRecord struct {
	NoContext bool  `json:",omitempty"`
	Context   []int `json:",omitempty"`
	Mapping   Mapping
}

type cumulativeRecord struct {
	NoContext bool  `json:",omitempty"`
	Context   []int `json:",omitempty"`
	Bounds    []Bound
}

// tableRecord keeps the conditional mappings and the cumulative bounds in two parallel records,
// so that loading a table does not recompute the bounds.
type tableRecord struct {
	ContextLen  int
	Conditional []conditionalRecord
	Cumulative  []cumulativeRecord
}

func keyToRecord(key ContextKey) (bool, []int) {
	if key.IsNone() {
		return true, nil
	}
	syms := key.Symbols()
	ctx := make([]int, len(syms))
	for i, s := range syms {
		ctx[i] = int(s)
	}
	return false, ctx
}

func keyFromRecord(none bool, ctx []int) (ContextKey, error) {
	if none {
		if len(ctx) != 0 {
			return ContextKey{}, ac.New(ac.InvalidModel, "%s with symbols %v", NoContext, ctx)
		}
		return NoContext, nil
	}
	if len(ctx) == 0 {
		return ContextKey{}, ac.New(ac.InvalidModel, "empty context")
	}
	syms := make([]byte, len(ctx))
	for i, c := range ctx {
		if c < 0 || c > 255 {
			return ContextKey{}, ac.New(ac.InvalidModel, "symbol %d out of range", c)
		}
		syms[i] = byte(c)
	}
	return NewContextKey(syms), nil
}

// WriteTable writes t as snappy framed JSON.
func WriteTable(w io.Writer, t *ContextTable) error {
	rec := tableRecord{ContextLen: t.ContextLen()}
	for _, e := range t.Entries() {
		none, ctx := keyToRecord(e.Key)
		rec.Conditional = append(rec.Conditional, conditionalRecord{NoContext: none, Context: ctx, Mapping: e.Mapping})
		rec.Cumulative = append(rec.Cumulative, cumulativeRecord{NoContext: none, Context: ctx, Bounds: e.Model.Bounds()})
	}

	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(rec); err != nil {
		return errors.Wrap(err, "")
	}
	if err := sw.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// ReadTable reads a table written by WriteTable.
func ReadTable(r io.Reader) (*ContextTable, error) {
	var rec tableRecord
	if err := json.NewDecoder(snappy.NewReader(r)).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "")
	}

	models := make(map[ContextKey]*Cumulative, len(rec.Cumulative))
	for _, cr := range rec.Cumulative {
		key, err := keyFromRecord(cr.NoContext, cr.Context)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		model, err := NewCumulativeFromBounds(cr.Bounds)
		if err != nil {
			return nil, errors.Wrapf(err, "context %s", key)
		}
		models[key] = model
	}

	entries := make([]*ContextEntry, 0, len(rec.Conditional))
	for _, cr := range rec.Conditional {
		key, err := keyFromRecord(cr.NoContext, cr.Context)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		model, ok := models[key]
		if !ok {
			return nil, ac.New(ac.InvalidModel, "context %s has no cumulative bounds", key)
		}
		if err := sameAlphabet(cr.Mapping, model); err != nil {
			return nil, errors.Wrapf(err, "context %s", key)
		}
		entries = append(entries, &ContextEntry{Key: key, Mapping: cr.Mapping, Model: model})
	}
	if len(entries) != len(models) {
		return nil, ac.New(ac.InvalidModel, "%d conditional records for %d cumulative records", len(entries), len(models))
	}

	t, err := NewContextTable(rec.ContextLen, entries)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return t, nil
}

// sameAlphabet checks that model orders the positive symbols of m as m does.
func sameAlphabet(m Mapping, model *Cumulative) error {
	i := 0
	for _, p := range m {
		if !(p.Probability > 0) {
			continue
		}
		if i >= model.Len() || model.Symbol(i) != p.Symbol {
			return ac.New(ac.InvalidModel, "mapping and cumulative bounds disagree at rank %d", i)
		}
		i++
	}
	if i != model.Len() {
		return ac.New(ac.InvalidModel, "cumulative bounds have %d symbols, mapping %d", model.Len(), i)
	}
	return nil
}
