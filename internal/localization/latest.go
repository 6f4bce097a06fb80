package localization

import "sync/atomic"

// Latest holds the most recent value of T. Every Store replaces the whole
// value, so a concurrent Load sees either a complete value or nothing.
type Latest[T any] struct {
	v atomic.Pointer[T]
}

// Store replaces the held value.
func (l *Latest[T]) Store(v T) {
	l.v.Store(&v)
}

// Load returns the held value, or false if nothing was stored yet.
func (l *Latest[T]) Load() (T, bool) {
	p := l.v.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
