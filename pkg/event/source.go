package event

import (
	"context"
	"fmt"
)

// Source supplies the full event list the agenda is built from.
type Source interface {
	FetchEvents(ctx context.Context) ([]Event, error)
}

// MultiSource concatenates the events of several sources, in order.
type MultiSource struct {
	sources []Source
}

func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

func (m *MultiSource) FetchEvents(ctx context.Context) ([]Event, error) {
	var all []Event
	for i, s := range m.sources {
		events, err := s.FetchEvents(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		all = append(all, events...)
	}
	return all, nil
}
