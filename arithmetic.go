package camzip

import (
	"github.com/pkg/errors"

	"github.com/fumin/camzip/ac"
	"github.com/fumin/camzip/ac/witten"
)

// ErrSymbolCount is returned when asked to decode a negative number of symbols.
var ErrSymbolCount = errors.New("negative symbol count")

// Encode arithmetic codes message with a single model for the whole message and returns the bits, one per byte.
// The same message and mapping always produce the same bits.
func Encode(message []byte, m Mapping, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	params, err := witten.NewParams(o.precision)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	model, err := NewCumulative(m)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	ae := witten.NewEncoder(params)
	for i, s := range message {
		if err := o.tick(i, len(message)); err != nil {
			return nil, errors.Wrap(err, "")
		}
		lower, prob, ok := model.Lookup(s)
		if !ok {
			return nil, ac.New(ac.InvalidModel, "symbol %d at %d has no probability", s, i)
		}
		if err := ae.Encode(lower, prob); err != nil {
			return nil, errors.Wrapf(err, "symbol %d at %d", s, i)
		}
	}
	o.done(len(message))
	return ae.Finish(), nil
}

// Decode decodes n symbols from bits produced by Encode.
// m must be the exact mapping, in the same order, given to Encode.
// The bit stream does not record its length in symbols, hence n.
func Decode(bits []byte, m Mapping, n int, opts ...Option) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrSymbolCount, "%d", n)
	}
	o := newOptions(opts)
	params, err := witten.NewParams(o.precision)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	model, err := NewCumulative(m)
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
		idx, err := ad.Decode(model)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %d of %d", i, n)
		}
		message[i] = model.Symbol(idx)
	}
	o.done(n)
	return message, nil
}

// Rate returns the number of bits spent per symbol.
func Rate(nbits, nsymbols int) float64 {
	if nsymbols == 0 {
		return 0
	}
	return float64(nbits) / float64(nsymbols)
}
