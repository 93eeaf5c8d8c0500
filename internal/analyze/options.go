package analyze

import "github.com/go-logr/logr"

type options struct {
	Logger logr.Logger
	Dir    string
	Tests  bool
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

// Option configures an Analyzer.
type Option func(o *options)

// WithLogger sets the logger package loading reports to.
func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// WithDir sets the directory patterns are resolved in. Defaults to the
// working directory.
func WithDir(dir string) Option {
	return func(o *options) {
		o.Dir = dir
	}
}

// WithTests also loads the test variants of the packages.
func WithTests(tests bool) Option {
	return func(o *options) {
		o.Tests = tests
	}
}
