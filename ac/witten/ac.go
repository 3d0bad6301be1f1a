// Package witten implements the arithmetic coding algorithm described in
// Witten, Ian H.; Neal, Radford M.; Cleary, John G. (June 1987). "Arithmetic Coding for Data Compression". Communications of the ACM 30 (6): 520–540.
//
// The interval [low, high+1) is kept in integers of a fixed bit width.
// Whenever it falls entirely in the lower or upper half a bit is committed and the interval is doubled,
// and when it straddles the midpoint inside the middle half the decision is deferred and counted,
// to be settled by the complement bits that follow the next committed bit.
package witten

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/camzip/ac"
)

const (
	// DefaultPrecision is the bit width of the coder registers.
	DefaultPrecision uint = 32

	// MinPrecision and MaxPrecision bound the accepted bit widths.
	// The upper bound leaves headroom for 2*high+1 in a uint64.
	MinPrecision uint = 8
	MaxPrecision uint = 62
)

// ErrPrecision is returned for a precision outside [MinPrecision, MaxPrecision].
var ErrPrecision = errors.New("precision out of range")

// Params holds the constants derived from a precision.
type Params struct {
	Precision     uint
	One           uint64
	Quarter       uint64
	Half          uint64
	ThreeQuarters uint64
}

// NewParams returns the coder constants for precision bits.
func NewParams(precision uint) (Params, error) {
	if precision < MinPrecision || precision > MaxPrecision {
		return Params{}, errors.Wrapf(ErrPrecision, "%d", precision)
	}
	one := (uint64(1) << precision) - 1
	// ceil(one/4)
	quarter := one/4 + 1
	if one%4 == 0 {
		quarter = one / 4
	}
	return Params{
		Precision:     precision,
		One:           one,
		Quarter:       quarter,
		Half:          2 * quarter,
		ThreeQuarters: 3 * quarter,
	}, nil
}

// Narrow restricts [low, high] to the sub-interval of a symbol with the given cumulative lower bound and probability.
// The sub-interval runs from the split point of lower up to, but excluding, the split point of lower+prob,
// so the sub-intervals of adjacent symbols never share a value.
func Narrow(low, high uint64, lower, prob float64) (uint64, uint64, error) {
	nlow := split(low, high, lower)
	nhigh := end(low, high, lower, prob)
	if nhigh <= nlow {
		return low, high, ac.New(ac.ZeroInterval, "[%d, %d] with lower %g probability %g", low, high, lower, prob)
	}
	return nlow, nhigh, nil
}

func width(low, high uint64) float64 {
	return float64(high-low) + 1
}

// split returns where the sub-interval starting at cumulative bound lower begins.
func split(low, high uint64, lower float64) uint64 {
	return low + uint64(math.Ceil(lower*width(low, high)))
}

// end returns the last value of the sub-interval of a symbol, one before the split point of the next symbol.
func end(low, high uint64, lower, prob float64) uint64 {
	next := split(low, high, lower+prob)
	if next == 0 {
		return 0
	}
	// lower+prob can round past 1 for the last symbol.
	if next > high {
		return high
	}
	return next - 1
}

// An Encoder carries the state required by an encoder.
type Encoder struct {
	Params
	low   uint64
	high  uint64
	fbits uint64
	bits  []byte
}

// NewEncoder returns an encoder over the full interval.
func NewEncoder(p Params) *Encoder {
	ae := &Encoder{Params: p}
	ae.high = p.One
	return ae
}

// Interval returns the current interval and the number of pending straddle bits.
func (ae *Encoder) Interval() (low, high, straddle uint64) {
	return ae.low, ae.high, ae.fbits
}

func (ae *Encoder) bitPlusFollow(bit byte) {
	ae.bits = append(ae.bits, bit)
	negbit := 1 - bit
	for ; ae.fbits > 0; ae.fbits-- {
		ae.bits = append(ae.bits, negbit)
	}
}

// Encode narrows the interval to a symbol and renormalizes, emitting the bits that became certain.
func (ae *Encoder) Encode(lower, prob float64) error {
	low, high, err := Narrow(ae.low, ae.high, lower, prob)
	if err != nil {
		return errors.Wrap(err, "")
	}
	ae.low, ae.high = low, high
	ae.rescale()
	return nil
}

func (ae *Encoder) rescale() {
	for {
		if ae.high < ae.Half {
			ae.bitPlusFollow(0)
		} else if ae.low >= ae.Half {
			ae.bitPlusFollow(1)
			ae.low -= ae.Half
			ae.high -= ae.Half
		} else if ae.low >= ae.Quarter && ae.high < ae.ThreeQuarters {
			ae.fbits += 1
			ae.low -= ae.Quarter
			ae.high -= ae.Quarter
		} else {
			break
		}

		ae.low = 2 * ae.low
		ae.high = 2*ae.high + 1
	}
}

// Finish flushes the pending straddle bits and returns the complete code.
// The encoder must not be used afterwards.
func (ae *Encoder) Finish() []byte {
	// One extra follow bit keeps the final code prefix-free.
	ae.fbits += 1
	if ae.low < ae.Quarter {
		ae.bitPlusFollow(0)
	} else {
		ae.bitPlusFollow(1)
	}
	return ae.bits
}

// A Decoder mirrors an Encoder over a materialized bit stream.
type Decoder struct {
	Params
	low   uint64
	high  uint64
	value uint64

	bits     []byte
	position int
}

// NewDecoder seeds a decoder with the first Precision bits of bits.
// Bits past the end of the stream read as zero for up to Precision positions,
// since the termination of the encoder is shorter than the look-ahead of the decoder.
func NewDecoder(p Params, bits []byte) (*Decoder, error) {
	ad := &Decoder{Params: p, bits: bits}
	ad.high = p.One
	for i := uint(0); i < p.Precision; i++ {
		inb, err := ad.readBit()
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		ad.value = 2*ad.value + inb
	}
	return ad, nil
}

// Position returns the number of bits consumed so far.
func (ad *Decoder) Position() int {
	return ad.position
}

func (ad *Decoder) readBit() (uint64, error) {
	pos := ad.position
	if pos >= len(ad.bits)+int(ad.Precision) {
		return 0, ac.New(ac.TruncatedStream, "read bit %d of %d", pos, len(ad.bits))
	}
	ad.position++
	if pos >= len(ad.bits) {
		return 0, nil
	}
	return uint64(ad.bits[pos]), nil
}

// Decode returns the index in d of the symbol the encoder narrowed to next, and consumes it.
func (ad *Decoder) Decode(d ac.Distribution) (int, error) {
	n := d.Len()
	if n == 0 {
		return -1, ac.New(ac.InvalidModel, "empty distribution")
	}
	offset := float64(int64(ad.value) - int64(ad.low))
	i := d.Rank(offset / width(ad.low, ad.high))

	// The fraction is rounded, whereas the encoder splits the interval at ceil(lower*range).
	// Settle the rank exactly against the integer bounds Narrow uses.
	if i < 0 {
		i = 0
	}
	for i > 0 {
		lower, _ := d.Bound(i)
		if ad.value >= split(ad.low, ad.high, lower) {
			break
		}
		i--
	}
	for i+1 < n {
		lower, prob := d.Bound(i)
		if ad.value <= end(ad.low, ad.high, lower, prob) {
			break
		}
		i++
	}

	lower, prob := d.Bound(i)
	low, high, err := Narrow(ad.low, ad.high, lower, prob)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	ad.low, ad.high = low, high
	if err := ad.rescale(); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return i, nil
}

// rescale interval
func (ad *Decoder) rescale() error {
	for {
		if ad.high < ad.Half {
			// do nothing
		} else if ad.low >= ad.Half {
			ad.value -= ad.Half
			ad.low -= ad.Half
			ad.high -= ad.Half
		} else if ad.low >= ad.Quarter && ad.high < ad.ThreeQuarters {
			ad.value -= ad.Quarter
			ad.low -= ad.Quarter
			ad.high -= ad.Quarter
		} else {
			return nil
		}

		ad.low = 2 * ad.low
		ad.high = 2*ad.high + 1
		inb, err := ad.readBit()
		if err != nil {
			return err
		}
		ad.value = 2*ad.value + inb
	}
}
