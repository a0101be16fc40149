package state

import "sync"

// Observable holds a value and notifies subscribers when it is replaced.
// Reads are safe from any goroutine; Set is meant to be called from the loop.
// Each subscriber sees values in the order they were set and never goes back
// to an older one.
type Observable[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	subs    map[uint64]*subscription[T]
	next    uint64
}

type subscription[T any] struct {
	mu   sync.Mutex
	fn   func(T)
	seen uint64
	any  bool
}

// deliver calls fn unless a newer value already reached this subscriber.
func (s *subscription[T]) deliver(value T, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.any && version <= s.seen {
		return
	}
	s.seen, s.any = version, true
	s.fn(value)
}

// NewObservable creates an Observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, subs: make(map[uint64]*subscription[T])}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set replaces the value and calls every subscriber with it.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	o.value = value
	o.version++
	version := o.version
	subs := make([]*subscription[T], 0, len(o.subs))
	for _, s := range o.subs {
		subs = append(subs, s)
	}
	o.mu.Unlock()

	for _, s := range subs {
		s.deliver(value, version)
	}
}

// Subscribe calls fn with the current value and then with every new one.
// fn must not call Set on the same Observable.
// The returned function removes the subscription.
func (o *Observable[T]) Subscribe(fn func(T)) (cancel func()) {
	s := &subscription[T]{fn: fn}

	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = s
	current, version := o.value, o.version
	o.mu.Unlock()

	s.deliver(current, version)

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}
