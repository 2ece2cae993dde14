package composure

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Pattern: Decorator — each feature wraps the next step, forming a
// composable chain where registration order determines execution order.

type (
	// Step is one layer of a composed call chain. It receives the request,
	// may hand it to the next step, and returns exactly one outcome: a
	// response, an error, or both (for instance a status error carrying the
	// response that triggered it).
	Step func(ctx context.Context, req *Request) (*Response, error)

	// Feature produces a step wrapping next. Features are configured once,
	// when the client is built, and wrapped again for every call. A feature
	// that never invokes next short-circuits the rest of the chain.
	Feature interface {
		Wrap(c *Client, next Step) (Step, error)
	}

	// FeatureFunc adapts a bare composition function into a [Feature].
	FeatureFunc func(c *Client, next Step) Step

	// ConfigurableFunc is a composition function taking a typed parameter
	// record. See [Parameterized] and [WithArgs].
	ConfigurableFunc[P any] func(c *Client, next Step, params P) Step

	// NamedArg is one named argument handed to a [WithArgs] feature.
	NamedArg struct {
		Value any
		Name  string
	}

	parameterized[P any] struct {
		fn     ConfigurableFunc[P]
		params P
	}

	withArgs[P any] struct {
		fn   ConfigurableFunc[P]
		args []NamedArg
	}

	namedFeature struct {
		Feature
		name string
	}

	// clientBinder is implemented by stateful features that must attach to
	// the client they belong to when it is constructed.
	clientBinder interface {
		bind(c *Client)
	}
)

// Wrap calls f.
func (f FeatureFunc) Wrap(c *Client, next Step) (Step, error) {
	return f(c, next), nil
}

// Parameterized binds a typed parameter record to a composition function.
// The record is passed unchanged to fn each time the chain is composed.
func Parameterized[P any](fn ConfigurableFunc[P], params P) Feature {
	return parameterized[P]{fn: fn, params: params}
}

func (p parameterized[P]) Wrap(c *Client, next Step) (Step, error) {
	return p.fn(c, next, p.params), nil
}

// Arg names a value for [WithArgs].
func Arg(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// WithArgs binds named arguments to a composition function. When the chain
// is composed the arguments are decoded into a fresh P, matching names
// against `mapstructure` tags (or field names, case-insensitively). An
// argument that P has no field for, or whose value does not fit the field,
// makes composition fail with [ErrFeatureConfig]. A name given twice keeps
// the last value. Duration fields accept strings such as "250ms".
func WithArgs[P any](fn ConfigurableFunc[P], args ...NamedArg) Feature {
	return withArgs[P]{fn: fn, args: args}
}

func (w withArgs[P]) Wrap(c *Client, next Step) (Step, error) {
	params, err := decodeArgs[P](w.args)
	if err != nil {
		return nil, err
	}

	return w.fn(c, next, params), nil
}

func decodeArgs[P any](args []NamedArg) (P, error) {
	var params P

	raw := make(map[string]any, len(args))
	for _, a := range args {
		raw[a.Name] = a.Value
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &params,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return params, fmt.Errorf("%w: %w", ErrFeatureConfig, err)
	}

	if err = dec.Decode(raw); err != nil {
		return params, fmt.Errorf("%w: %w", ErrFeatureConfig, err)
	}

	return params, nil
}

// Named attaches a label to a feature. The label shows up in composition
// errors and in the client's feature listing.
func Named(name string, f Feature) Feature {
	return namedFeature{Feature: f, name: name}
}

func (n namedFeature) bind(c *Client) {
	if b, ok := n.Feature.(clientBinder); ok {
		b.bind(c)
	}
}

// featureState returns the state kept by the stateful feature key for c,
// building it on first use. A feature value registered on several clients
// owns one independent state per client.
func featureState[S any](c *Client, key any, build func() S) S {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if s, ok := c.states[key]; ok {
		return s.(S) //nolint:forcetypeassert // key owns the stored type
	}

	if c.states == nil {
		c.states = map[any]any{}
	}

	s := build()
	c.states[key] = s

	return s
}

// FeatureName returns the label given with [Named], or a description of
// the feature's type.
func FeatureName(f Feature) string {
	if n, ok := f.(namedFeature); ok {
		return n.name
	}

	return fmt.Sprintf("%T", f)
}
