package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Publisher delivers audit events to a sink
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// LogPublisher writes events as structured zerolog entries
type LogPublisher struct {
	logger zerolog.Logger
}

var _ Publisher = (*LogPublisher)(nil)

// NewLogPublisher logs through the given logger. A nil logger falls back to the global one.
func NewLogPublisher(logger *zerolog.Logger) *LogPublisher {
	if logger == nil {
		logger = &log.Logger
	}
	return &LogPublisher{logger: logger.With().Str("component", "audit").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event *Event) error {
	entry := p.logger.Info()
	if event.Reason != "" {
		entry = p.logger.Warn().Str("reason", event.Reason)
	}
	entry.
		Str("event_id", event.ID).
		Str("event", string(event.Type)).
		Str("principal_id", event.PrincipalID).
		Str("email", event.Email).
		Fields(event.Details).
		Time("at", event.CreatedAt).
		Msg("audit")
	return nil
}

// MemoryPublisher keeps events in memory, for development and tests
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

var _ Publisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{events: make([]Event, 0)}
}

func (p *MemoryPublisher) Publish(_ context.Context, event *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

// Events returns a copy of everything published so far
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// OfType returns the published events matching eventType
func (p *MemoryPublisher) OfType(eventType EventType) []Event {
	out := make([]Event, 0)
	for _, e := range p.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MultiPublisher fans an event out to several publishers and returns the first error
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event *Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
