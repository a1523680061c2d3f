package keel

import (
	"fmt"
	"sync"
)

// ConfigCell is a thread-safe holder of exactly one configuration value.
// It is the single cross-goroutine surface of the framework: many readers
// and one writer may use it concurrently, readers never observe a value
// mid-replacement, and replacement is wholesale. There is no partial
// mutation API.
//
// A cell starts empty. Get returns ErrConfigNotLoaded until the first Set;
// after that it returns the most recently set value. Each application owns
// its own cell, so multiple applications in one process never share state.
type ConfigCell[T any] struct {
	mu    sync.RWMutex
	value T
	set   bool
}

// NewConfigCell creates an empty cell.
func NewConfigCell[T any]() *ConfigCell[T] {
	return &ConfigCell[T]{}
}

// Get returns the current value. Before the first Set it returns the zero
// value of T and ErrConfigNotLoaded (kind KindConfig). A Get that races an
// in-flight Set blocks only for the duration of the swap.
func (c *ConfigCell[T]) Get() (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.set {
		var zero T
		return zero, NewFrameworkError(KindConfig, "configuration cell is empty", ErrConfigNotLoaded)
	}
	return c.value, nil
}

// MustGet returns the current value and panics if the cell is empty.
// It is intended for paths where boot has provably completed, such as
// request handlers in an already-running application.
func (c *ConfigCell[T]) MustGet() T {
	v, err := c.Get()
	if err != nil {
		panic(fmt.Sprintf("keel: %v", err))
	}
	return v
}

// Set replaces the cell's value. The replacement is atomic with respect to
// Get: concurrent readers see either the previous value or the new one,
// never a mixture.
func (c *ConfigCell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.set = true
}

// IsSet reports whether the cell holds a value.
func (c *ConfigCell[T]) IsSet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.set
}
