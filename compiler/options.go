package compiler

import (
	"github.com/go-logr/logr"

	"omap/internal/diagnostic"
)

type options struct {
	Logger      logr.Logger
	Diagnostics *diagnostic.Diagnostics
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

	if o.Diagnostics == nil {
		o.Diagnostics = &diagnostic.Diagnostics{}
	}

	return o
}

// Option configures Compile.
type Option func(o *options)

// WithLogger sets the logger; compiled rules are logged at V(1).
func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// WithDiagnostics collects build diagnostics into d. Warnings and infos in d
// when the build finishes end up in Configuration.Warnings.
func WithDiagnostics(d *diagnostic.Diagnostics) Option {
	return func(o *options) {
		o.Diagnostics = d
	}
}
