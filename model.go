package camzip

import (
	"sort"

	"github.com/fumin/camzip/ac"
)

// A Prob is the probability of a symbol.
type Prob struct {
	Symbol      byte
	Probability float64
}

// A Mapping is a probability mapping over an alphabet.
// Its order is significant: it fixes the order of the cumulative bounds,
// so encoder and decoder must be given the same Mapping in the same order.
type Mapping []Prob

// Probability returns the probability of s, or zero if s is not in m.
func (m Mapping) Probability(s byte) float64 {
	for _, p := range m {
		if p.Symbol == s {
			return p.Probability
		}
	}
	return 0
}

// A Freq is the number of occurrences of a symbol.
type Freq struct {
	Symbol byte
	Count  uint64
}

// Frequencies are symbol counts in the order that fixes the alphabet.
type Frequencies []Freq

// CountFrequencies counts the symbols of data in ascending symbol order.
func CountFrequencies(data []byte) Frequencies {
	var counts [256]uint64
	for _, b := range data {
		counts[b]++
	}
	freqs := make(Frequencies, 0, 256)
	for s, c := range counts {
		if c == 0 {
			continue
		}
		freqs = append(freqs, Freq{Symbol: byte(s), Count: c})
	}
	return freqs
}

// Total returns the sum of the counts, which is the number of symbols of the counted message.
func (f Frequencies) Total() uint64 {
	var n uint64
	for _, fr := range f {
		n += fr.Count
	}
	return n
}

// Mapping returns count / total for every symbol, keeping the order of f.
func (f Frequencies) Mapping() (Mapping, error) {
	n := f.Total()
	if n == 0 {
		return nil, ac.New(ac.InvalidModel, "no symbol has a positive count")
	}
	m := make(Mapping, 0, len(f))
	for _, fr := range f {
		m = append(m, Prob{Symbol: fr.Symbol, Probability: float64(fr.Count) / float64(n)})
	}
	return m, nil
}

// sortedSymbols returns the symbols of counts with a positive count, in ascending order.
func sortedSymbols(counts map[byte]uint64) []byte {
	syms := make([]byte, 0, len(counts))
	for s, c := range counts {
		if c > 0 {
			syms = append(syms, s)
		}
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}
