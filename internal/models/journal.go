package models

import "time"

// UpdateJournalEntry records one delete-then-create segment update.
// The server has no in-place update endpoint, so an update that crashes
// between the delete and the create would otherwise strand the item with
// neither the old nor the new segment. Entries left in the deleted or
// failed phase are picked up by the compensation job, which retries the
// create half until the new segment exists server-side.
type UpdateJournalEntry struct {
	ID     uint64      `boltholdKey:"ID"`
	ItemID string      `boltholdIndex:"ItemID"`
	Phase  UpdatePhase `boltholdIndex:"Phase"`

	OldSegment Segment
	NewSegment Segment

	Attempts  int
	LastError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unresolved checks if the entry still needs compensation
func (e *UpdateJournalEntry) Unresolved() bool {
	return e.Phase == UpdatePhaseDeleted || e.Phase == UpdatePhaseFailed
}
