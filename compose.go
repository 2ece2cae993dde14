package composure

import (
	"errors"
	"fmt"
)

// Compose folds features around terminal and returns the resulting chain.
// Features are given in registration order; the first one becomes the
// outermost layer, so Compose(c, [a, b, c], t) yields a(b(c(t))). It sees
// the request first and the response last. With no features the terminal
// step is returned as is.
//
// A feature that fails to wrap (typically a parameterized feature whose
// arguments do not fit) aborts composition with an error matching
// [ErrFeatureConfig].
func Compose(c *Client, features []Feature, terminal Step) (Step, error) {
	chain := terminal

	for i := len(features) - 1; i >= 0; i-- {
		f := features[i]

		next, err := f.Wrap(c, chain)
		if err == nil && next == nil {
			err = errors.New("wrap returned a nil step")
		}

		if err != nil {
			if !errors.Is(err, ErrFeatureConfig) {
				err = fmt.Errorf("%w: %w", ErrFeatureConfig, err)
			}

			return nil, fmt.Errorf(
				"composure: feature %d (%s): %w",
				i,
				FeatureName(f),
				err,
			)
		}

		chain = next
	}

	return chain, nil
}
