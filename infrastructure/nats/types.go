package nats

import (
	"strings"

	"taskhub/domain/ports"
)

const (
	// StreamName keeps every change event for replay by late consumers
	StreamName = "TASKHUB_EVENTS"

	// SubjectPrefix is followed by the event type, e.g.
	// taskhub.events.task.updated
	SubjectPrefix = "taskhub.events"

	// SubjectAll matches every event subject
	SubjectAll = SubjectPrefix + ".>"
)

func SubjectFor(t ports.EventType) string {
	return SubjectPrefix + "." + string(t)
}

// EventTypeFromSubject is the inverse of SubjectFor
func EventTypeFromSubject(subject string) (ports.EventType, bool) {
	rest, ok := strings.CutPrefix(subject, SubjectPrefix+".")
	if !ok || rest == "" {
		return "", false
	}
	return ports.EventType(rest), true
}

// StreamInfo summarises the event stream for health output
type StreamInfo struct {
	Name     string `json:"name"`
	Messages uint64 `json:"messages"`
	Bytes    uint64 `json:"bytes"`
	FirstSeq uint64 `json:"firstSeq"`
	LastSeq  uint64 `json:"lastSeq"`
}
