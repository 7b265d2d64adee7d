// Package eventbus publishes and consumes execution lifecycle events.
package eventbus

import (
	"context"
	"io"

	"github.com/forgeflow/forgeflow/pkg/events"
)

// Event is anything sent on the executions topic.
type Event interface {
	GetType() events.EventType
}

// Publisher sends execution events keyed by flow ID so that one flow's events share a partition.
type Publisher interface {
	Publish(ctx context.Context, flowID string, event Event) error
}

// Handler receives a decoded *events.ExecutionStarted, *events.ExecutionProgress or *events.ExecutionFinished.
type Handler func(ctx context.Context, event any) error

type Subscriber interface {
	Handle(eventType events.EventType, handler Handler) error
	Subscribe(ctx context.Context) error
}

// Bus is a publisher and subscriber over one transport.
type Bus interface {
	Publisher
	Subscriber
	io.Closer
}
