package ac

import (
	"testing"

	"github.com/pkg/errors"
)

func TestErrorKind(t *testing.T) {
	err := errors.Wrap(New(ZeroInterval, "[%d, %d]", 3, 3), "symbol 7")
	if !errors.Is(err, ErrZeroInterval) {
		t.Errorf("%v", err)
	}
	if errors.Is(err, ErrTruncatedStream) {
		t.Errorf("%v", err)
	}
	if k := KindOf(err); k != ZeroInterval {
		t.Errorf("%v", k)
	}
	if k := KindOf(errors.New("plain")); k != 0 {
		t.Errorf("%v", k)
	}
	if s := err.Error(); s != "symbol 7: zero interval: [3, 3]" {
		t.Errorf("%s", s)
	}
}
