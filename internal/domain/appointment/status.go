package appointment

import "github.com/lebarbier/lebarbier-api/internal/httperr"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// BlockingStatuses hold capacity on an employee's schedule. Pending
// requests do not.
var BlockingStatuses = []Status{StatusConfirmed, StatusInProgress}

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Blocking() bool {
	return s == StatusConfirmed || s == StatusInProgress
}

func InitialStatus() Status {
	return StatusPending
}

// CanTransition validates a staff driven status change.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return httperr.Validation("invalid_status", "Statut invalide.")
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.Conflict("invalid_state", "Changement de statut impossible depuis "+string(from)+".")
}

// CanClientCancel: clients may withdraw until the appointment starts.
func CanClientCancel(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.Conflict("invalid_state", "Ce rendez-vous ne peut plus être annulé.")
	}
	return nil
}
