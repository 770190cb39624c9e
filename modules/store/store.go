// Package store holds observable values. A store's producer runs only while
// it has subscribers.
package store

import "sync"

// Readable is a value that can be observed.
type Readable[T any] interface {
	// Subscribe calls fn with the current value and on every change.
	Subscribe(fn func(T)) (unsubscribe func())
}

// StartFunc is invoked when the first subscriber arrives. The returned stop
// func, if any, runs when the last one leaves.
type StartFunc[T any] func(set func(T)) (stop func())

// Writable is a Readable that can be set from outside.
type Writable[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[uint64]func(T)
	nextID uint64
	start  StartFunc[T]
	stop   func()

	// running is false while a producer store has no subscribers. Sets made
	// during start only store the value.
	running bool
}

func NewWritable[T any](value T, start StartFunc[T]) *Writable[T] {
	return &Writable[T]{
		value: value,
		subs:  make(map[uint64]func(T)),
		start: start,
	}
}

// NewReadable returns a store whose value only its producer can change.
func NewReadable[T any](value T, start StartFunc[T]) Readable[T] {
	return NewWritable(value, start)
}

func (w *Writable[T]) Set(value T) {
	w.mu.Lock()
	w.value = value
	if w.start != nil && !w.running {
		w.mu.Unlock()
		return
	}
	subs := make([]func(T), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

func (w *Writable[T]) Update(fn func(T) T) {
	w.mu.Lock()
	value := w.value
	w.mu.Unlock()
	w.Set(fn(value))
}

func (w *Writable[T]) Subscribe(fn func(T)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	first := len(w.subs) == 1
	w.mu.Unlock()

	if first && w.start != nil {
		stop := w.start(w.Set)
		w.mu.Lock()
		w.stop = stop
		w.running = true
		w.mu.Unlock()
	}

	w.mu.Lock()
	value := w.value
	w.mu.Unlock()
	fn(value)

	var once sync.Once
	return func() {
		once.Do(func() { w.unsubscribe(id) })
	}
}

func (w *Writable[T]) unsubscribe(id uint64) {
	w.mu.Lock()
	delete(w.subs, id)
	var stop func()
	if len(w.subs) == 0 {
		stop, w.stop = w.stop, nil
		w.running = false
	}
	w.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Subscribers reports the current subscriber count.
func (w *Writable[T]) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// Get reads the current value of s by subscribing and unsubscribing at once.
func Get[T any](s Readable[T]) T {
	var value T
	s.Subscribe(func(v T) { value = v })()
	return value
}

// Derived computes a store from one source. It subscribes to the source only
// while it has subscribers itself.
func Derived[A, T any](src Readable[A], fn func(A) T) Readable[T] {
	var zero T
	return NewReadable(zero, func(set func(T)) func() {
		return src.Subscribe(func(a A) { set(fn(a)) })
	})
}

// Derived2 computes a store from two sources.
func Derived2[A, B, T any](a Readable[A], b Readable[B], fn func(A, B) T) Readable[T] {
	var zero T
	return NewReadable(zero, func(set func(T)) func() {
		var (
			mu     sync.Mutex
			va     A
			vb     B
			loaded bool
		)
		recompute := func() {
			mu.Lock()
			ready := loaded
			x, y := va, vb
			mu.Unlock()
			if ready {
				set(fn(x, y))
			}
		}

		unsubA := a.Subscribe(func(v A) {
			mu.Lock()
			va = v
			mu.Unlock()
			recompute()
		})
		unsubB := b.Subscribe(func(v B) {
			mu.Lock()
			vb = v
			loaded = true
			mu.Unlock()
			recompute()
		})

		return func() {
			unsubA()
			unsubB()
		}
	})
}
