// Package signal provides per-owner observer lists.
//
// Each component that emits notifications owns its own Signal values, so
// listeners are scoped to one entity and there is no process-wide event bus.
// Signals are not safe for concurrent use; they are driven by the single
// simulation goroutine.
package signal

// Signal is an ordered list of handlers receiving values of type T.
// The zero value is ready to use.
type Signal[T any] struct {
	next     uint64
	handlers []entry[T]
}

type entry[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
// The returned cancel function is idempotent.
//
// Precondition: fn must not be nil.
// Postcondition: fn is invoked on every subsequent Emit until cancelled.
func (s *Signal[T]) Subscribe(fn func(T)) (cancel func()) {
	if fn == nil {
		panic("signal.Subscribe: fn must not be nil")
	}
	s.next++
	id := s.next
	s.handlers = append(s.handlers, entry[T]{id: id, fn: fn})
	return func() { s.remove(id) }
}

func (s *Signal[T]) remove(id uint64) {
	for i, e := range s.handlers {
		if e.id == id {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Emit calls every handler in subscription order with v.
// Handlers added or removed during Emit take effect on the next Emit.
func (s *Signal[T]) Emit(v T) {
	if len(s.handlers) == 0 {
		return
	}
	snapshot := make([]entry[T], len(s.handlers))
	copy(snapshot, s.handlers)
	for _, e := range snapshot {
		e.fn(v)
	}
}

// Len returns the number of active handlers.
func (s *Signal[T]) Len() int { return len(s.handlers) }

// Clear removes every handler.
func (s *Signal[T]) Clear() { s.handlers = nil }
