package service

import (
	"fmt"

	"anoa.com/mentorhub/internal/entity"
	"anoa.com/mentorhub/pkg/apperror"
)

type MatchAction string

const (
	ActionAccept   MatchAction = "accept"
	ActionReject   MatchAction = "reject"
	ActionComplete MatchAction = "complete"
	ActionCancel   MatchAction = "cancel"
)

// transitions is the full lifecycle table. pending -> active|rejected,
// active -> completed; rejected and completed are terminal. Cancel is only
// legal while pending (a mentee withdrawing an unanswered request) and maps
// to deletion rather than a status.
var transitions = map[entity.MatchStatus]map[MatchAction]entity.MatchStatus{
	entity.MatchPending: {
		ActionAccept: entity.MatchActive,
		ActionReject: entity.MatchRejected,
	},
	entity.MatchActive: {
		ActionComplete: entity.MatchCompleted,
	},
}

// Transition resolves {from, action} to the next status. Every entry point
// (respond, complete, cancel) goes through here so validity logic cannot
// diverge between handlers.
func Transition(from entity.MatchStatus, action MatchAction) (entity.MatchStatus, error) {
	if action == ActionCancel {
		if from != entity.MatchPending {
			return from, apperror.New(400, fmt.Sprintf("match is %s, only pending requests can be cancelled", from), apperror.ErrBadRequest)
		}
		// Caller deletes the row; status is unchanged.
		return from, nil
	}

	next, ok := transitions[from][action]
	if !ok {
		return from, apperror.New(400, fmt.Sprintf("match is not %s", requiredStatus(action)), apperror.ErrBadRequest)
	}
	return next, nil
}

func requiredStatus(action MatchAction) entity.MatchStatus {
	if action == ActionComplete {
		return entity.MatchActive
	}
	return entity.MatchPending
}

// ContactVisible reports whether contact fields (emails, linkedin) may be
// disclosed for a match in the given status. This is a read-time projection
// rule: pending and rejected matches never leak PII.
func ContactVisible(status entity.MatchStatus) bool {
	return status == entity.MatchActive || status == entity.MatchCompleted
}
