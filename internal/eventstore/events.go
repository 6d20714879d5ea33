package eventstore

import (
	"encoding/json"
	"time"
)

// RunStartedPayload describes the validated options of a run.
type RunStartedPayload struct {
	Module    string `json:"module"`
	Toolchain string `json:"toolchain"`
	Source    string `json:"source"`
	Python    string `json:"python,omitempty"`
	Command   string `json:"command"`
}

// StageCompletedPayload is recorded once per stage the run entered.
type StageCompletedPayload struct {
	Stage      string `json:"stage"`
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunFinishedPayload closes a run.
type RunFinishedPayload struct {
	Status     string `json:"status"`
	FinalState string `json:"final_state"`
	DurationMS int64  `json:"duration_ms"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"error,omitempty"`
}

// NewRunStarted builds the opening event of a run.
func NewRunStarted(buildID string, p RunStartedPayload) (Event, error) {
	return newEvent(buildID, EventRunStarted, p, map[string]string{"toolchain": p.Toolchain})
}

// NewStageCompleted builds a stage event.
func NewStageCompleted(buildID string, p StageCompletedPayload) (Event, error) {
	return newEvent(buildID, EventStageCompleted, p, nil)
}

// NewRunFinished builds the closing event of a run.
func NewRunFinished(buildID string, p RunFinishedPayload) (Event, error) {
	return newEvent(buildID, EventRunFinished, p, nil)
}

func newEvent(buildID string, eventType EventType, payload any, metadata map[string]string) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, marshalError(buildID, eventType, err)
	}
	return Event{
		BuildID:   buildID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   raw,
		Metadata:  metadata,
	}, nil
}
