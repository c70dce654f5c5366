package ledger

import "storeroom/internal/models"

// transitions lists every legal status change. Issued and rejected are
// terminal, so they have no entry.
var transitions = map[models.RequestStatus][]models.RequestStatus{
	models.RequestPending:  {models.RequestApproved, models.RequestRejected},
	models.RequestApproved: {models.RequestIssued},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to models.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
