package domain

import "time"

// StatusUpdate is one append-only entry in a complaint's timeline. OldStatus
// is nil only for the creation entry. The chronologically latest entry's
// NewStatus must always equal the complaint's current status; the write path
// keeps the two in one transaction.
type StatusUpdate struct {
	ID          string
	ComplaintID string
	UpdatedBy   string
	OldStatus   *ComplaintStatus
	NewStatus   ComplaintStatus
	Note        *string
	Timestamp   time.Time
}
