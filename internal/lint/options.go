package lint

import (
	"github.com/go-logr/logr"

	"omap/internal/match"
)

type options struct {
	Logger       logr.Logger
	NameMatching match.Mode
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *options) correct() *options {
	if o.Logger.GetSink() == nil {
		o.Logger = logr.Discard()
	}

	return o
}

// Option configures a Linter.
type Option func(o *options)

func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// WithNameMatching selects how "all" pairs field names, as
// builder.WithNameMatching does at build time.
func WithNameMatching(mode match.Mode) Option {
	return func(o *options) {
		o.NameMatching = mode
	}
}
