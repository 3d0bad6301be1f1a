package camzip

import (
	"context"

	"go.uber.org/zap"

	"github.com/fumin/camzip/ac/witten"
)

// cancelCheckInterval is the number of symbols between two checks of the context.
const cancelCheckInterval = 256

// ProgressFunc is called with the number of symbols processed so far and the total.
type ProgressFunc func(done, total int)

type options struct {
	precision     uint
	progress      ProgressFunc
	progressEvery int
	ctx           context.Context
	logger        *zap.Logger
	maxContextLen int
}

// Option configures a coding or training call.
type Option func(*options)

// WithPrecision sets the bit width of the coder registers.
// Encoder and decoder must use the same precision.
func WithPrecision(bits uint) Option {
	return func(o *options) {
		o.precision = bits
	}
}

// WithProgress calls fn every n symbols, and once more when the call completes.
func WithProgress(n int, fn ProgressFunc) Option {
	return func(o *options) {
		o.progressEvery = n
		o.progress = fn
	}
}

// WithContext makes a call fail with ctx.Err() once ctx is done.
// The context is checked between symbols.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxContextLen raises or lowers the bound on context lengths accepted by Train.
// Tables grow as alphabet^k, which is what the bound is for.
func WithMaxContextLen(k int) Option {
	return func(o *options) {
		o.maxContextLen = k
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		precision:     witten.DefaultPrecision,
		logger:        zap.NewNop(),
		maxContextLen: DefaultMaxContextLen,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// tick reports progress and checks for cancellation before the i-th of total symbols.
func (o *options) tick(i, total int) error {
	if o.progress != nil && o.progressEvery > 0 && i%o.progressEvery == 0 {
		o.progress(i, total)
	}
	if o.ctx != nil && i%cancelCheckInterval == 0 {
		if err := o.ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) done(total int) {
	if o.progress != nil {
		o.progress(total, total)
	}
}
