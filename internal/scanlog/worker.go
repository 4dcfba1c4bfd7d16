package scanlog

import "context"

// Publisher is the downstream sink drained by the worker.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// Worker consumes scan records from a channel and hands them to a publisher.
// It keeps background fan-out testable without wiring broker implementations.
type Worker struct {
	publisher Publisher
	inbox     <-chan Record
}

func NewWorker(publisher Publisher, inbox <-chan Record) *Worker {
	return &Worker{publisher: publisher, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec := <-w.inbox:
			if err := w.publisher.Publish(ctx, rec); err != nil {
				return err
			}
		}
	}
}
