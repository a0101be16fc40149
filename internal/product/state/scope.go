package state

import "sync"

// Scope ties asynchronous results to the lifetime of a consumer such as a visible screen.
// Results that arrive after Close are dropped.
type Scope struct {
	loop   *Loop
	closed chan struct{}
	once   sync.Once
}

// NewScope creates an open scope whose deliveries run on loop.
func NewScope(loop *Loop) *Scope {
	return &Scope{loop: loop, closed: make(chan struct{})}
}

// Close marks the scope as gone.
func (s *Scope) Close() {
	s.once.Do(func() { close(s.closed) })
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Deliver calls fn on the loop with the result of f, unless the scope is closed by then.
func Deliver[T any](s *Scope, f *Future[T], fn func(T, error)) {
	go func() {
		select {
		case <-f.Done():
		case <-s.closed:
			return
		}
		value, err, _ := f.Result()
		s.loop.Post(func() {
			if s.Closed() {
				return
			}
			fn(value, err)
		})
	}()
}
