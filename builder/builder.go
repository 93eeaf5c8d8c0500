package builder

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/slices"

	"omap/compiler"
	"omap/expr"
	"omap/internal/common"
	"omap/internal/diagnostic"
	"omap/mapping"
	"omap/rule"
)

type pairKey struct {
	source reflect.Type
	target reflect.Type
}

// ConfigurationBuilder collects rules for any number of type pairs.
// It is not safe for concurrent use.
type ConfigurationBuilder struct {
	opts     *options
	contexts map[pairKey]*Context
	entries  []rule.Entry
	diags    diagnostic.Diagnostics
	failures []error
}

// New creates an empty builder.
func New(opts ...Option) *ConfigurationBuilder {
	return &ConfigurationBuilder{
		opts:     new(options).apply(opts...).correct(),
		contexts: make(map[pairKey]*Context),
	}
}

// Context returns the mapping context of the pair, creating it on first use.
// source and target are struct types, not pointers.
func (b *ConfigurationBuilder) Context(source, target reflect.Type) *Context {
	key := pairKey{source: source, target: target}
	if c, ok := b.contexts[key]; ok {
		return c
	}

	c := &Context{b: b, source: source, target: target}
	b.contexts[key] = c

	return c
}

// Entries returns the declared entries in declaration order.
func (b *ConfigurationBuilder) Entries() []rule.Entry {
	return slices.Clone(b.entries)
}

// Diagnostics returns the warnings recorded while declaring rules.
func (b *ConfigurationBuilder) Diagnostics() diagnostic.Diagnostics {
	var d diagnostic.Diagnostics
	d.Merge(b.diags)

	return d
}

// Build compiles every declared rule. It fails on the first declaration
// error, then on the first rule that does not compile.
func (b *ConfigurationBuilder) Build() (*mapping.Configuration, error) {
	if len(b.failures) > 0 {
		return nil, b.failures[0]
	}

	diags := b.Diagnostics()

	cfg, err := compiler.Compile(b.entries,
		compiler.WithLogger(b.opts.Logger),
		compiler.WithDiagnostics(&diags))
	if err != nil {
		return nil, err
	}

	b.opts.Logger.V(1).Info("configuration built", "rules", cfg.Len(), "warnings", len(cfg.Warnings()))

	return cfg, nil
}

// Context is the untyped mapping context of one source/target pair. The
// generic nodes and rule files declare rules through it.
type Context struct {
	b      *ConfigurationBuilder
	source reflect.Type
	target reflect.Type
	named  rule.NamedResolutions
}

func (c *Context) SourceType() reflect.Type { return c.source }
func (c *Context) TargetType() reflect.Type { return c.target }

// NamedResolutions returns the dependency names currently in effect.
func (c *Context) NamedResolutions() rule.NamedResolutions { return c.named }

func (c *Context) String() string { return common.PairKey(c.source, c.target) }

// SetDependencies replaces the dependency names in effect for rules added
// afterwards. It does not merge with earlier declarations.
func (c *Context) SetDependencies(deps ...rule.Dependency) {
	named, err := rule.NewNamedResolutions(deps...)
	if err != nil {
		c.fail(err)

		return
	}

	c.named = named
	c.b.opts.Logger.V(1).Info("dependencies declared", "pair", c.String(), "count", named.Len())
}

// AddAccessor declares a Property, Object or Collection rule. The source
// lambda takes *S and optionally the dependency tuple; the target lambda
// takes *T.
func (c *Context) AddAccessor(kind rule.Kind, source, target *expr.Lambda) {
	if err := c.checkParam(source, c.source); err != nil {
		c.fail(fmt.Errorf("%s source: %w", kind, err))
	}

	if err := c.checkParam(target, c.target); err != nil {
		c.fail(fmt.Errorf("%s target: %w", kind, err))
	}

	c.b.entries = append(c.b.entries, rule.NewAccessorEntry(kind, source, target, c.named))
}

// AddFunction declares a Function rule. depTuple is nil for func(*S, *T).
func (c *Context) AddFunction(fn any, depTuple reflect.Type) {
	c.b.entries = append(c.b.entries, rule.NewFunctionEntry(fn, c.source, c.target, depTuple, c.named))
}

func (c *Context) checkParam(l *expr.Lambda, want reflect.Type) error {
	if l == nil || len(l.Params) == 0 {
		return nil // reported by the compiler
	}

	if got := l.Params[0].Type(); got != reflect.PointerTo(want) {
		return fmt.Errorf("accessor takes %s, pair needs *%s", got, common.TypeName(want))
	}

	return nil
}

func (c *Context) fail(err error) {
	c.b.failures = append(c.b.failures, compiler.NewDeclarationError(c.source, c.target, err))
}
