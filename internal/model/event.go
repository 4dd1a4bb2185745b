package model

import "time"

// Event is a single performance that seats are sold for. Every seat row
// belongs to exactly one event.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – title shown to visitors.
//	Description – free-form blurb.
//	Venue       – where the performance takes place.
//	StartsAt    – when the performance begins.
//	DurationMin – running time in minutes.
//	CreatedAt   – creation timestamp.
type Event struct {
	ID          uint64    // events.id
	Name        string    // events.name
	Description string    // events.description
	Venue       string    // events.venue
	StartsAt    time.Time // events.starts_at
	DurationMin int       // events.duration_min
	CreatedAt   time.Time // events.created_at
}
