package sinks

import (
	"context"
	"sync"

	"bossfight/logging"
)

// MemorySink records events for assertions. It doubles as a Publisher so a
// service under test can write to it without a router.
type MemorySink struct {
	mu     sync.RWMutex
	events []logging.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{events: make([]logging.Event, 0)}
}

func (s *MemorySink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, cloneForMemory(event))
	return nil
}

func (s *MemorySink) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]logging.Event, len(s.events))
	copy(copied, s.events)
	return copied
}

// OfType returns the recorded events whose type is one of types, in order.
func (s *MemorySink) OfType(types ...logging.EventType) []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []logging.Event
	for _, event := range s.events {
		for _, t := range types {
			if event.Type == t {
				matched = append(matched, event)
				break
			}
		}
	}
	return matched
}

// Versions lists the state version carried by each recorded event.
func (s *MemorySink) Versions() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := make([]uint64, len(s.events))
	for i, event := range s.events {
		versions[i] = event.Version
	}
	return versions
}

// Publish lets tests use the sink directly as a logging.Publisher.
func (s *MemorySink) Publish(_ context.Context, event logging.Event) {
	_ = s.Write(event)
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

func (s *MemorySink) Close(context.Context) error {
	return nil
}

func cloneForMemory(event logging.Event) logging.Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]logging.EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		copied := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			copied[k] = v
		}
		cloned.Extra = copied
	}
	return cloned
}
