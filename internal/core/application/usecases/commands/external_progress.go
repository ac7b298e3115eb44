package commands

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/assignment"
)

// statusRank orders the forward lifecycle path so provider snapshots can be
// caught up step by step. Terminal stop states are handled separately.
func statusRank(s assignment.Status) int {
	switch s {
	case assignment.Pending:
		return 0
	case assignment.Accepted:
		return 1
	case assignment.PickedUp:
		return 2
	case assignment.Delivered:
		return 3
	default:
		return -1
	}
}

// applyExternalProgress advances an external assignment to the provider's
// reported status, replaying any intermediate milestones the service missed.
// Webhooks can be lost and polls are coarse, so a jump from pending straight
// to delivered is legal and fills in every milestone with the report time.
//
// The function is idempotent: a replayed or stale report (same or earlier
// status) changes nothing and returns false. Proof is attached when the
// report carries one and the assignment has none yet.
func applyExternalProgress(
	a *assignment.Assignment,
	reported assignment.Status,
	proof *assignment.Proof,
	at time.Time,
) (bool, error) {
	changed := false

	// A locally terminal assignment never moves again; the only thing a
	// report can still contribute is late proof on a delivered one.
	if a.Status().IsTerminal() && a.Status() != reported {
		if a.Status() == assignment.Delivered && proof != nil && a.Proof() == nil {
			if err := a.AttachProof(*proof); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, nil
	}

	switch reported {
	case assignment.Pending:
		// Fresh jobs report pending/searching until a courier takes them.
		// The aggregate is already at or past that milestone, so there is
		// nothing to replay.
		return false, nil

	case assignment.Cancelled:
		if a.Status() == assignment.Cancelled {
			return false, nil
		}
		if err := a.Cancel(); err != nil {
			return false, err
		}
		return true, nil

	case assignment.Failed:
		if a.Status() == assignment.Failed {
			return false, nil
		}
		if err := a.Fail(); err != nil {
			return false, err
		}
		return true, nil

	case assignment.Accepted, assignment.PickedUp, assignment.Delivered:
		target := statusRank(reported)
		for statusRank(a.Status()) < target {
			var err error
			switch a.Status() {
			case assignment.Pending:
				err = a.ConfirmCourierMatch(at)
			case assignment.Accepted:
				err = a.ConfirmPickup(at)
			case assignment.PickedUp:
				// Proof travels with the final transition when present.
				err = a.CompleteDelivery(proof, at)
			}
			if err != nil {
				return changed, err
			}
			changed = true
		}

		// Late proof on an already delivered assignment.
		if a.Status() == assignment.Delivered && proof != nil && a.Proof() == nil {
			if err := a.AttachProof(*proof); err != nil {
				return changed, err
			}
			changed = true
		}

		return changed, nil

	default:
		return false, fmt.Errorf("%w: provider reported %s", assignment.ErrInvalidTransition, reported)
	}
}
