package quota

import "context"

// DateLayout is the calendar-day identifier stored alongside the count.
const DateLayout = "2006-01-02"

// Record is the persisted daily usage counter for one client.
// A missing or unparsable record is treated as fresh — quota fails open.
type Record struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// Store persists quota records keyed by an opaque client identifier.
// Only the Governor reads or writes through it.
type Store interface {
	// Get retrieves the record for a client.
	// Returns nil when no usable record exists (not an error).
	Get(ctx context.Context, clientID string) (*Record, error)

	// Put persists the record for a client, replacing any previous one.
	Put(ctx context.Context, clientID string, record Record) error

	// Close releases any resources held by the store.
	Close() error
}
