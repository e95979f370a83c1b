// Package events provides an event system for workload generation progress.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventStarted is emitted when a generation run begins
	EventStarted EventType = "started"
	// EventPreambleDone is emitted after the seed section is written
	EventPreambleDone EventType = "preamble_done"
	// EventProgress is emitted periodically during the main section
	EventProgress EventType = "progress"
	// EventCompleted is emitted when the main section is fully written
	EventCompleted EventType = "completed"
	// EventFailed is emitted when a run aborts
	EventFailed EventType = "failed"
)

// Event represents a generation lifecycle event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Workload  string    `json:"workload"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Ops       int     `json:"ops,omitempty"`
	TotalOps  int     `json:"total_ops,omitempty"`
	Reads     int     `json:"reads,omitempty"`
	ReadRatio float64 `json:"read_ratio,omitempty"`
	Keys      int     `json:"keys,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// NewStartedEvent creates a started event
func NewStartedEvent(workload string, numKeys, numOps int) Event {
	return Event{
		Type:      EventStarted,
		Timestamp: time.Now(),
		Workload:  workload,
		Data: EventData{
			Keys:     numKeys,
			TotalOps: numOps,
		},
	}
}

// NewPreambleDoneEvent creates a preamble done event carrying the number of seeded keys
func NewPreambleDoneEvent(workload string, seeded int) Event {
	return Event{
		Type:      EventPreambleDone,
		Timestamp: time.Now(),
		Workload:  workload,
		Data: EventData{
			Keys: seeded,
		},
	}
}

// NewProgressEvent creates a progress event
func NewProgressEvent(workload string, ops, totalOps, reads int) Event {
	return Event{
		Type:      EventProgress,
		Timestamp: time.Now(),
		Workload:  workload,
		Data: EventData{
			Ops:       ops,
			TotalOps:  totalOps,
			Reads:     reads,
			ReadRatio: ratio(reads, ops),
		},
	}
}

// NewCompletedEvent creates a completed event
func NewCompletedEvent(workload string, ops, reads int) Event {
	return Event{
		Type:      EventCompleted,
		Timestamp: time.Now(),
		Workload:  workload,
		Data: EventData{
			Ops:       ops,
			TotalOps:  ops,
			Reads:     reads,
			ReadRatio: ratio(reads, ops),
		},
	}
}

// NewFailedEvent creates a failed event
func NewFailedEvent(workload string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventFailed,
		Timestamp: time.Now(),
		Workload:  workload,
		Data: EventData{
			Error: errMsg,
		},
	}
}

func ratio(reads, ops int) float64 {
	if ops == 0 {
		return 0
	}
	return float64(reads) / float64(ops)
}
