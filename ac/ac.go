// Package ac defines the interfaces and failure modes the arithmetic coding algorithm requires.
// See its subpackages for particular finite precision realizations of the algorithm.
package ac

import (
	"fmt"

	"github.com/pkg/errors"
)

// A Distribution is an ordered cumulative distribution over an alphabet of byte symbols,
// as expected by the arithmetic coding algorithm.
type Distribution interface {
	// Len returns the number of symbols with positive probability.
	Len() int

	// Bound returns the cumulative lower bound and the probability of the i-th symbol.
	Bound(i int) (lower, prob float64)

	// Symbol returns the i-th symbol.
	Symbol(i int) byte

	// Rank returns the index of the symbol with the greatest lower bound not exceeding f.
	Rank(f float64) int
}

// Kind tells apart the ways a coding call can fail.
type Kind int

const (
	// InvalidModel means the probability mapping is empty or degenerate after filtering.
	InvalidModel Kind = iota + 1

	// ZeroInterval means the narrowed interval collapsed to zero width.
	// The precision is insufficient for the alphabet size or for the probability of a symbol.
	ZeroInterval

	// TruncatedStream means the decoder ran out of bits before producing the requested symbols.
	TruncatedStream

	// UnknownContext means a contextual model was requested for a context absent from the table.
	UnknownContext
)

func (k Kind) String() string {
	switch k {
	case InvalidModel:
		return "invalid model"
	case ZeroInterval:
		return "zero interval"
	case TruncatedStream:
		return "truncated stream"
	case UnknownContext:
		return "unknown context"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the failure of a coding call.
// None of them is recoverable: the artifact and model pair cannot be processed.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is an *Error of the same Kind, so that errors.Is(err, ErrZeroInterval) holds for every zero interval failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidModel    = &Error{Kind: InvalidModel}
	ErrZeroInterval    = &Error{Kind: ZeroInterval}
	ErrTruncatedStream = &Error{Kind: TruncatedStream}
	ErrUnknownContext  = &Error{Kind: UnknownContext}
)

// New returns an *Error of kind k with a formatted message, carrying a stack trace.
func New(k Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: k, Msg: fmt.Sprintf(format, args...)})
}

// KindOf returns the Kind of the first *Error in err's chain, or zero if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
