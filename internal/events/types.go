package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in the tomoscan lifecycle
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Image is the image name this event relates to (empty for display/launcher events)
	Image string `json:"image,omitempty"`

	// Step is the build step number within the image (nil if not step-related)
	Step *int `json:"step,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Build lifecycle events
const (
	BuildStarted   EventType = "build.started"
	BuildStep      EventType = "build.step"
	BuildCompleted EventType = "build.completed"
	BuildFailed    EventType = "build.failed"
)

// Display launch events
const (
	// DisplayStarting is emitted just before the display tool is spawned
	// Payload: command ([]string), locator (string)
	DisplayStarting EventType = "display.starting"

	// DisplayExited is emitted when the display tool exits
	// Payload: exit_code (int)
	DisplayExited EventType = "display.exited"

	DisplayFailed EventType = "display.failed"
)

// Verification events
const (
	VerifyStarted EventType = "verify.started"

	// VerifyCheck is emitted once per check against an image
	// Payload: name (string), ok (bool), detail (string)
	VerifyCheck EventType = "verify.check"

	VerifyPassed EventType = "verify.passed"
	VerifyFailed EventType = "verify.failed"
)

// Export events
const (
	ExportStarted   EventType = "export.started"
	ExportCompleted EventType = "export.completed"
	ExportFailed    EventType = "export.failed"
)

// NewEvent creates an event with the given type and image
func NewEvent(eventType EventType, image string) Event {
	return Event{
		Type:  eventType,
		Image: image,
	}
}

// WithStep returns a copy of the event with the build step number set
func (e Event) WithStep(step int) Event {
	e.Step = &step
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), ".failed")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Image != "" {
		parts = append(parts, e.Image)
	}

	if e.Step != nil {
		parts = append(parts, fmt.Sprintf("step=#%d", *e.Step))
	}

	return strings.Join(parts, " ")
}
