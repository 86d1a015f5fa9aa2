package services

import "sync"

// SignalKind names a dashboard-wide signal
type SignalKind string

// SignalCancel is the escape gesture: close every dialog and the row menu
const SignalCancel SignalKind = "cancel"

// Signal is delivered to every subscriber. An empty SessionID addresses all sessions.
type Signal struct {
	Kind      SignalKind
	SessionID string
}

// Signals is a subscription registry. Every Subscribe is paired with the
// release function it returns.
type Signals struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(Signal)
}

func NewSignals() *Signals {
	return &Signals{handlers: make(map[int]func(Signal))}
}

// Subscribe registers handler and returns the function that deregisters it.
// Calling release more than once is harmless.
func (s *Signals) Subscribe(handler func(Signal)) (release func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

// Emit delivers sig synchronously to the current subscribers
func (s *Signals) Emit(sig Signal) {
	s.mu.Lock()
	handlers := make([]func(Signal), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(sig)
	}
}

// Subscribers returns the number of live subscriptions
func (s *Signals) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
