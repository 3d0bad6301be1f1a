package camzip

import (
	"sort"

	"github.com/fumin/camzip/ac"
)

// A Cumulative is the ordered cumulative distribution of a Mapping.
// It is immutable once built and safe for concurrent use.
type Cumulative struct {
	symbols []byte
	lower   []float64
	prob    []float64

	// index maps a symbol to its rank plus one, zero meaning absent.
	index [256]uint16
}

// NewCumulative drops the symbols of m whose probability is not positive, keeping the order of the others,
// and accumulates their lower bounds starting from zero.
func NewCumulative(m Mapping) (*Cumulative, error) {
	c := &Cumulative{}
	var sum float64
	for _, p := range m {
		if !(p.Probability > 0) {
			continue
		}
		if c.index[p.Symbol] != 0 {
			return nil, ac.New(ac.InvalidModel, "symbol %d appears twice", p.Symbol)
		}
		c.symbols = append(c.symbols, p.Symbol)
		c.lower = append(c.lower, sum)
		c.prob = append(c.prob, p.Probability)
		c.index[p.Symbol] = uint16(len(c.symbols))
		sum += p.Probability
	}
	if len(c.symbols) == 0 {
		return nil, ac.New(ac.InvalidModel, "no symbol has a positive probability")
	}
	return c, nil
}

// A Bound is one row of a cumulative distribution.
type Bound struct {
	Symbol      byte
	Lower       float64
	Probability float64
}

// NewCumulativeFromBounds rebuilds a Cumulative from precomputed rows without recomputing the running sum.
// The rows must start at zero, be strictly increasing, and each row must end exactly where the next one starts,
// since the coder splits the interval at both ends of a row.
func NewCumulativeFromBounds(bounds []Bound) (*Cumulative, error) {
	if len(bounds) == 0 {
		return nil, ac.New(ac.InvalidModel, "no bounds")
	}
	if bounds[0].Lower != 0 {
		return nil, ac.New(ac.InvalidModel, "first bound is %g", bounds[0].Lower)
	}
	c := &Cumulative{}
	for i, b := range bounds {
		if !(b.Probability > 0) {
			return nil, ac.New(ac.InvalidModel, "symbol %d has probability %g", b.Symbol, b.Probability)
		}
		if i > 0 {
			prev := bounds[i-1]
			if b.Lower <= prev.Lower || prev.Lower+prev.Probability != b.Lower {
				return nil, ac.New(ac.InvalidModel, "bound %d: %g does not follow %g+%g", i, b.Lower, prev.Lower, prev.Probability)
			}
		}
		if c.index[b.Symbol] != 0 {
			return nil, ac.New(ac.InvalidModel, "symbol %d appears twice", b.Symbol)
		}
		c.symbols = append(c.symbols, b.Symbol)
		c.lower = append(c.lower, b.Lower)
		c.prob = append(c.prob, b.Probability)
		c.index[b.Symbol] = uint16(i + 1)
	}
	return c, nil
}

// Len returns the size of the alphabet.
func (c *Cumulative) Len() int {
	return len(c.symbols)
}

// Symbol returns the i-th symbol of the alphabet.
func (c *Cumulative) Symbol(i int) byte {
	return c.symbols[i]
}

// Bound returns the lower bound and probability of the i-th symbol.
func (c *Cumulative) Bound(i int) (float64, float64) {
	return c.lower[i], c.prob[i]
}

// Lookup returns the lower bound and probability of s.
// ok is false when s has no positive probability.
func (c *Cumulative) Lookup(s byte) (lower, prob float64, ok bool) {
	i := int(c.index[s]) - 1
	if i < 0 {
		return 0, 0, false
	}
	return c.lower[i], c.prob[i], true
}

// Rank returns the index of the symbol with the greatest lower bound not exceeding f.
func (c *Cumulative) Rank(f float64) int {
	i := sort.Search(len(c.lower), func(i int) bool { return c.lower[i] > f }) - 1
	if i < 0 {
		return 0
	}
	return i
}

// Bounds returns the rows of c.
func (c *Cumulative) Bounds() []Bound {
	bounds := make([]Bound, len(c.symbols))
	for i, s := range c.symbols {
		bounds[i] = Bound{Symbol: s, Lower: c.lower[i], Probability: c.prob[i]}
	}
	return bounds
}

var _ ac.Distribution = (*Cumulative)(nil)
