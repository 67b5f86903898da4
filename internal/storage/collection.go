package storage

import (
	"context"
	"fmt"
	"slices"
)

// WritePolicy decides what happens to the in-memory mirror when a save fails.
// The save error is returned to the caller under either policy.
type WritePolicy string

const (
	// PolicyRollback restores the previous in-memory state.
	PolicyRollback WritePolicy = "rollback"
	// PolicyKeep keeps the mutation in memory, unpersisted.
	PolicyKeep WritePolicy = "keep"
)

// ParseWritePolicy validates a configured policy name. Empty means rollback.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch WritePolicy(s) {
	case "", PolicyRollback:
		return PolicyRollback, nil
	case PolicyKeep:
		return PolicyKeep, nil
	}
	return "", fmt.Errorf("unknown write policy %q (want rollback or keep)", s)
}

// Collection mirrors one JSON array key in memory. It is not safe for
// concurrent use; owners serialise access.
type Collection[T any] struct {
	gw     Gateway
	key    string
	policy WritePolicy
	items  []T
	found  bool
}

// OpenCollection loads key from gw into a new mirror.
func OpenCollection[T any](ctx context.Context, gw Gateway, key string, policy WritePolicy) (*Collection[T], error) {
	items, found, err := LoadJSON[[]T](ctx, gw, key)
	if err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicyRollback
	}
	return &Collection[T]{gw: gw, key: key, policy: policy, items: items, found: found}, nil
}

// Key returns the storage key.
func (c *Collection[T]) Key() string { return c.key }

// Found reports whether the key held a document when it was opened or has
// been written since.
func (c *Collection[T]) Found() bool { return c.found }

// Len returns the number of mirrored items.
func (c *Collection[T]) Len() int { return len(c.items) }

// Items returns a shallow copy of the mirrored items.
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Replace persists next and makes it the mirrored state. On save failure the
// mirror is restored under PolicyRollback and kept under PolicyKeep.
func (c *Collection[T]) Replace(ctx context.Context, next []T) error {
	prev, prevFound := c.items, c.found
	c.items, c.found = slices.Clip(next), true
	if next == nil {
		c.items = []T{}
	}
	if err := SaveJSON(ctx, c.gw, c.key, c.items); err != nil {
		if c.policy == PolicyRollback {
			c.items, c.found = prev, prevFound
		}
		return err
	}
	return nil
}

// SetUnsaved makes items the mirrored state without saving them. Owners use
// it to keep two mirrors consistent after a save failed and could not be
// undone; the next successful Replace persists the state.
func (c *Collection[T]) SetUnsaved(items []T) {
	c.items = slices.Clip(items)
	if items == nil {
		c.items = []T{}
	}
}
