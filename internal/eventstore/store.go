package eventstore

import "context"

// Store persists journal events.
type Store interface {
	// Append writes the event and returns it with Seq populated.
	Append(ctx context.Context, event Event) (Event, error)

	// ByBuildID returns every event of one run in append order.
	ByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// RecentBuildIDs returns up to limit run ids, most recent run first.
	RecentBuildIDs(ctx context.Context, limit int) ([]string, error)

	Close() error
}
