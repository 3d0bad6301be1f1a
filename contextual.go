package camzip

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/fumin/camzip/ac"
	"github.com/fumin/camzip/ac/witten"
)

// A ContextKey is the sequence of the k most recently settled symbols,
// or NoContext before k symbols exist.
type ContextKey struct {
	seq string
}

// NoContext is the key used before enough symbols have been settled.
var NoContext = ContextKey{}

// NewContextKey returns the key of the symbols syms, oldest first.
// An empty syms gives NoContext.
func NewContextKey(syms []byte) ContextKey {
	return ContextKey{seq: string(syms)}
}

// keyAt returns the key for the symbol at position i of message, given context length k.
// Only message[:i] is read, so the decoder can call it on the symbols it has already produced.
func keyAt(message []byte, i, k int) ContextKey {
	if i < k {
		return NoContext
	}
	return ContextKey{seq: string(message[i-k : i])}
}

// IsNone reports whether key is NoContext.
func (key ContextKey) IsNone() bool {
	return key.seq == ""
}

// Symbols returns the symbols of key, nil for NoContext.
func (key ContextKey) Symbols() []byte {
	if key.IsNone() {
		return nil
	}
	return []byte(key.seq)
}

func (key ContextKey) String() string {
	if key.IsNone() {
		return "no_context"
	}
	return fmt.Sprintf("%q", key.seq)
}

// ContextModels selects a model by context.
type ContextModels interface {
	// ContextLen returns the number of preceding symbols a context consists of.
	ContextLen() int

	// Model returns the model for key, or false if key was never trained.
	Model(key ContextKey) (*Cumulative, bool)
}

// A ContextEntry is the model of one context.
type ContextEntry struct {
	Key     ContextKey
	Mapping Mapping
	Model   *Cumulative
}

// A ContextTable maps contexts to trained models.
// Contexts never observed in training are absent.
// A ContextTable is read-only after construction and safe for concurrent use.
type ContextTable struct {
	k       int
	entries map[ContextKey]*ContextEntry
}

// NewContextTable returns a table of context length k over entries.
// k must lie in [1, MaxContextLenLimit].
// The table must contain NoContext, since every message starts without context.
func NewContextTable(k int, entries []*ContextEntry) (*ContextTable, error) {
	if err := checkContextLen(k, MaxContextLenLimit); err != nil {
		return nil, err
	}
	t := &ContextTable{k: k, entries: make(map[ContextKey]*ContextEntry, len(entries))}
	for _, e := range entries {
		if !e.Key.IsNone() && len(e.Key.seq) != k {
			return nil, ac.New(ac.InvalidModel, "context %s has length %d, want %d", e.Key, len(e.Key.seq), k)
		}
		if _, ok := t.entries[e.Key]; ok {
			return nil, ac.New(ac.InvalidModel, "context %s appears twice", e.Key)
		}
		if e.Model == nil {
			model, err := NewCumulative(e.Mapping)
			if err != nil {
				return nil, errors.Wrapf(err, "context %s", e.Key)
			}
			e.Model = model
		}
		t.entries[e.Key] = e
	}
	if _, ok := t.entries[NoContext]; !ok {
		return nil, ac.New(ac.InvalidModel, "missing %s", NoContext)
	}
	return t, nil
}

// ContextLen returns the context length of t.
func (t *ContextTable) ContextLen() int {
	return t.k
}

// Model returns the cumulative model of key.
func (t *ContextTable) Model(key ContextKey) (*Cumulative, bool) {
	e, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	return e.Model, true
}

// Entry returns the entry of key.
func (t *ContextTable) Entry(key ContextKey) (*ContextEntry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Len returns the number of contexts including NoContext.
func (t *ContextTable) Len() int {
	return len(t.entries)
}

// Entries returns the entries of t, NoContext first and the rest in lexicographic order.
func (t *ContextTable) Entries() []*ContextEntry {
	entries := make([]*ContextEntry, 0, len(t.entries))
	for _, e := range t.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Key, entries[j].Key
		if a.IsNone() != b.IsNone() {
			return a.IsNone()
		}
		return a.seq < b.seq
	})
	return entries
}

func lookupContext(models ContextModels, message []byte, i int) (*Cumulative, error) {
	key := keyAt(message, i, models.ContextLen())
	model, ok := models.Model(key)
	if !ok {
		return nil, ac.New(ac.UnknownContext, "context %s at %d", key, i)
	}
	return model, nil
}

// EncodeContext arithmetic codes message, choosing the model of every symbol by the symbols preceding it.
func EncodeContext(message []byte, models ContextModels, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	params, err := witten.NewParams(o.precision)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	ae := witten.NewEncoder(params)
	for i, s := range message {
		if err := o.tick(i, len(message)); err != nil {
			return nil, errors.Wrap(err, "")
		}
		model, err := lookupContext(models, message, i)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		lower, prob, ok := model.Lookup(s)
		if !ok {
			return nil, ac.New(ac.InvalidModel, "symbol %d at %d has no probability in context %s", s, i, keyAt(message, i, models.ContextLen()))
		}
		if err := ae.Encode(lower, prob); err != nil {
			return nil, errors.Wrapf(err, "symbol %d at %d", s, i)
		}
	}
	o.done(len(message))
	return ae.Finish(), nil
}

// DecodeContext decodes n symbols from bits produced by EncodeContext with the same models.
// The context of every symbol is taken from the symbols already decoded.
func DecodeContext(bits []byte, models ContextModels, n int, opts ...Option) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrSymbolCount, "%d", n)
	}
	o := newOptions(opts)
	params, err := witten.NewParams(o.precision)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	ad, err := witten.NewDecoder(params, bits)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	message := make([]byte, n)
	for i := range message {
		if err := o.tick(i, n); err != nil {
			return nil, errors.Wrap(err, "")
		}
		model, err := lookupContext(models, message, i)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		idx, err := ad.Decode(model)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %d of %d", i, n)
		}
		message[i] = model.Symbol(idx)
	}
	o.done(n)
	return message, nil
}
