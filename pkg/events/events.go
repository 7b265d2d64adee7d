// Package events defines the execution lifecycle notifications published on the event bus.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/forgeflow/forgeflow/pkg/models"
)

type EventType string

// Topic carries every execution event.
const Topic = "forgeflow.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent  EventType = "execution.started"
	ExecutionProgressEvent EventType = "execution.progress"
	ExecutionFinishedEvent EventType = "execution.finished"
)

type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	FlowID      string    `json:"flow_id"`
	ExecutionID string    `json:"execution_id"`
}

// NewBaseEvent stamps a fresh id and the current time.
func NewBaseEvent(eventType EventType, flowID, executionID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		FlowID:      flowID,
		ExecutionID: executionID,
	}
}

type ExecutionStarted struct {
	BaseEvent

	Trigger map[string]any `json:"trigger,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

// ExecutionProgress carries the full result snapshot after a node changed state.
type ExecutionProgress struct {
	BaseEvent

	Results []models.NodeResult `json:"results"`
}

func (e ExecutionProgress) GetType() EventType {
	return ExecutionProgressEvent
}

type ExecutionFinished struct {
	BaseEvent

	Status   models.ExecutionStatus `json:"status"`
	Error    string                 `json:"error,omitempty"`
	Duration time.Duration          `json:"duration"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}
