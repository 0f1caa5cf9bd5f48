package cache

import "context"

// Mutation describes a speculative update of one cached value.
//
// Apply must be pure: it derives the speculative value from the previous
// snapshot without touching the store.
type Mutation[T any, P any] struct {
	Key    Key
	Patch  P
	Apply  func(prev T, patch P) T
	Commit func(ctx context.Context, patch P) (T, error)
	// Settle lists extra prefixes invalidated once the commit resolves
	Settle []Key
}

// Optimistic runs m in three phases. First it cancels in-flight fetches of
// m.Key and snapshots the cached value. Then it writes Apply(snapshot) so
// readers see the change at once. Finally it commits: on failure the
// snapshot is restored, and on either outcome m.Key and m.Settle are
// invalidated so the next read reconciles with the store.
func Optimistic[T any, P any](ctx context.Context, c *Client, m Mutation[T, P]) (T, error) {
	c.Cancel(m.Key)

	raw, had := c.GetQueryData(m.Key)
	prev, typed := raw.(T)
	speculative := had && typed && m.Apply != nil
	if speculative {
		c.SetQueryData(m.Key, m.Apply(prev, m.Patch))
	}

	res, err := m.Commit(ctx, m.Patch)
	if err != nil && speculative {
		c.SetQueryData(m.Key, prev)
	}

	c.Invalidate(m.Key)
	for _, k := range m.Settle {
		c.Invalidate(k)
	}
	return res, err
}
