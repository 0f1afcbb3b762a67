package generation

// Status represents the canonical lifecycle state of a generation task,
// independent of any one provider's wording.
type Status string

// Possible task status values. A task only ever moves forward:
// Pending -> Processing -> one of the terminal states.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether no further transition can occur from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is one of the canonical status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted,
		StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	default:
		return false
	}
}
