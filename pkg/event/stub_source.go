package event

import (
	"context"
	"sync"
)

// StubSource is an in-memory Source for tests.
type StubSource struct {
	mu     sync.Mutex
	events []Event
	err    error
	calls  int
	// BeforeReturn, when set, runs inside FetchEvents before it returns.
	BeforeReturn func(call int)
}

func NewStubSource(events ...Event) *StubSource {
	return &StubSource{events: events}
}

func (s *StubSource) FetchEvents(ctx context.Context) ([]Event, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	events := make([]Event, len(s.events))
	copy(events, s.events)
	err := s.err
	hook := s.BeforeReturn
	s.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *StubSource) SetEvents(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

func (s *StubSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
