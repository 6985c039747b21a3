package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/pkg/config"
	"github.com/noah-isme/program-cycles-api/pkg/jobs"
)

const publishTimeout = 5 * time.Second

// Async hands events to a worker queue so request handlers never wait on the
// broker. Failed deliveries are retried by the queue.
type Async struct {
	inner Publisher
	queue *jobs.Queue
}

// NewAsync wraps inner. Call Start before publishing and Close on shutdown.
func NewAsync(inner Publisher, cfg jobs.QueueConfig) *Async {
	a := &Async{inner: inner}
	a.queue = jobs.NewQueue("lifecycle-events", a.deliver, cfg)
	return a
}

// Start launches the delivery workers.
func (a *Async) Start(ctx context.Context) {
	a.queue.Start(ctx)
}

// Publish enqueues the event. It fails only when the buffer is full or the
// publisher is shutting down.
func (a *Async) Publish(_ context.Context, event Event) error {
	return a.queue.TryEnqueue(jobs.Job{ID: event.ParticipantID, Type: event.Type, Payload: event})
}

// Close drains pending events and closes the wrapped publisher.
func (a *Async) Close() error {
	a.queue.Stop()
	if closer, ok := a.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (a *Async) deliver(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(Event)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return a.inner.Publish(ctx, event)
}

// NewFromConfig builds the configured publisher, wrapping the broker
// publisher in an Async dispatcher when events are enabled.
func NewFromConfig(cfg config.EventsConfig, logger *zap.Logger) Publisher {
	pub := New(cfg, logger)
	if _, nop := pub.(Nop); nop {
		return pub
	}
	async := NewAsync(pub, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	async.Start(context.Background())
	return async
}
