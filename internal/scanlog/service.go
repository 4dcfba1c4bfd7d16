package scanlog

import (
	"context"
	"time"
)

// Service captures scan records. It is append-only and uses the store for
// persistence so tests can swap sinks easily. When an event channel is
// attached, records additionally fan out to it without ever blocking or
// failing the caller: the durable store is the source of truth, the channel
// is best-effort.
type Service struct {
	store Store
	sink  chan<- Record
	clock func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSink attaches a fan-out channel drained by a background worker.
func WithSink(sink chan<- Record) Option {
	return func(s *Service) { s.sink = sink }
}

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Record appends a scan record, defaulting ScannedAt when unset.
func (s *Service) Record(ctx context.Context, rec Record) error {
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = s.clock()
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return err
	}
	if s.sink != nil {
		select {
		case s.sink <- rec:
		default:
			// Full sink drops the event rather than stalling lookups.
		}
	}
	return nil
}

// ListByCase returns the scan history for one case.
func (s *Service) ListByCase(ctx context.Context, caseID string) ([]Record, error) {
	return s.store.ListByCase(ctx, caseID)
}
