package rawdata

import "time"

// Payload is one raw provider response kept for inspection and replay.
type Payload struct {
	Source     string
	EntityType string
	EntityKey  string
	MatchID    string
	Body       string
	FetchedAt  time.Time
}
