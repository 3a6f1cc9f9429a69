package audit

import (
	"context"
	"sync"
	"time"
)

// Sink receives emitted events. Implementations: in-memory store, Kafka.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures registry notifications. By default it appends
// synchronously; with WithAsyncBuffer it decouples emission from the sink and
// drains the buffer on Close. Events are dropped, not blocked on, when the
// buffer is full.
type Publisher struct {
	sink   Sink
	inbox  chan Event
	done   chan struct{}
	closed sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered async delivery.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode a full buffer drops the event rather
// than stalling the operation that emitted it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
	}
	return nil
}

// Close drains buffered events and stops the background worker. Safe to call
// more than once.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox == nil {
			close(p.done)
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		_ = p.sink.Append(context.Background(), event)
	}
}
