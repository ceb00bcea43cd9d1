package enrollment

import "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"

type Status string

const (
	StatusJoined    Status = "joined"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusWithdrawn Status = "withdrawn"
)

var ErrInvalidStateTransition = core.NewStateError("invalid enrollment status transition")

// transitions lists the statuses reachable from each status. Terminal statuses have no entry.
var transitions = map[Status][]Status{
	StatusJoined: {StatusCompleted, StatusFailed, StatusWithdrawn},
}

func (s Status) Valid() bool {
	switch s {
	case StatusJoined, StatusCompleted, StatusFailed, StatusWithdrawn:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Transition checks that an enrollment may move from `from` to `to`.
func Transition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidStateTransition
}
