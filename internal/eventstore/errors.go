package eventstore

import (
	"git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

func storeError(msg string, cause error) error {
	return errors.EventStoreError(msg).WithCause(cause).Build()
}

func marshalError(buildID string, eventType EventType, cause error) error {
	return errors.EventStoreError("failed to marshal event payload").
		WithCause(cause).
		WithContext("build_id", buildID).
		WithContext("event_type", string(eventType)).
		Build()
}

func unmarshalError(e Event, cause error) error {
	return errors.EventStoreError("failed to unmarshal event payload").
		WithCause(cause).
		WithContext("build_id", e.BuildID).
		WithContext("event_type", string(e.Type)).
		Build()
}

func notFoundError(buildID string) error {
	return errors.ValidationError("no run recorded with this id").
		WithContext("build_id", buildID).
		Build()
}
