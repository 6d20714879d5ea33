package eventstore

import (
	"encoding/json"
	"time"
)

// EventType names a journal entry kind.
type EventType string

const (
	EventRunStarted     EventType = "RunStarted"
	EventStageCompleted EventType = "StageCompleted"
	EventRunFinished    EventType = "RunFinished"
)

// Event is a single journal entry. Seq is assigned by the store on append
// and orders events across runs.
type Event struct {
	Seq       int64
	BuildID   string
	Type      EventType
	Timestamp time.Time
	Payload   json.RawMessage
	Metadata  map[string]string
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return unmarshalError(e, err)
	}
	return nil
}
