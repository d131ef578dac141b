package eventlogger

import (
	"context"
	"sync"
)

// memoryEventLogger keeps events in process. Used when no database is
// configured.
type memoryEventLogger struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryEventLogger() *memoryEventLogger {
	return &memoryEventLogger{}
}

func (el *memoryEventLogger) Save(_ context.Context, e Event) error {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, e)
	return nil
}

func (el *memoryEventLogger) GetByType(_ context.Context, eventType string) ([]Event, error) {
	el.mu.RLock()
	defer el.mu.RUnlock()
	events := make([]Event, 0)
	for _, e := range el.events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events, nil
}

func (el *memoryEventLogger) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}
