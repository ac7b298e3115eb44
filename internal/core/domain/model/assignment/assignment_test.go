package assignment_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newInternalAssignment(t *testing.T) (*assignment.Assignment, kernel.UUID) {
	t.Helper()

	driverID := kernel.NewUUID()
	a, err := assignment.NewAssignment(
		kernel.NewUUID(), kernel.NewUUID(), assignment.Internal, &driverID, baseTime)
	require.NoError(t, err)

	return a, driverID
}

func newExternalAssignment(t *testing.T) *assignment.Assignment {
	t.Helper()

	a, err := assignment.NewAssignment(
		kernel.NewUUID(), kernel.NewUUID(), assignment.Stuart, nil, baseTime)
	require.NoError(t, err)

	return a
}

func mustProof(t *testing.T) assignment.Proof {
	t.Helper()

	proof, err := assignment.NewProof("https://cdn.example/photo.jpg", "", "left at door")
	require.NoError(t, err)

	return proof
}

func TestNewAssignment(t *testing.T) {
	t.Run("internal_with_driver", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)

		require.NoError(t, a.Validate())
		assert.Equal(t, assignment.Pending, a.Status())
		assert.Equal(t, assignment.Internal, a.Provider())
		require.NotNil(t, a.DriverID())
		assert.True(t, a.DriverID().IsEqual(driverID))
		assert.Nil(t, a.ExternalID())
		assert.Nil(t, a.Proof())
		assert.Equal(t, baseTime, a.RequestedAt())
	})

	t.Run("internal_without_driver_fails", func(t *testing.T) {
		_, err := assignment.NewAssignment(
			kernel.NewUUID(), kernel.NewUUID(), assignment.Internal, nil, baseTime)

		require.ErrorIs(t, err, assignment.ErrDriverIsRequired)
	})

	t.Run("external_without_driver", func(t *testing.T) {
		a := newExternalAssignment(t)

		assert.Nil(t, a.DriverID())
		assert.Nil(t, a.ExternalID())
	})

	t.Run("external_with_driver_fails", func(t *testing.T) {
		driverID := kernel.NewUUID()
		_, err := assignment.NewAssignment(
			kernel.NewUUID(), kernel.NewUUID(), assignment.Stuart, &driverID, baseTime)

		require.ErrorIs(t, err, assignment.ErrDriverNotAllowed)
	})

	t.Run("invalid_ids_fail", func(t *testing.T) {
		var zero kernel.UUID

		_, err := assignment.NewAssignment(
			zero, kernel.NewUUID(), assignment.Internal, nil, baseTime)
		require.Error(t, err)

		_, err = assignment.NewAssignment(
			kernel.NewUUID(), zero, assignment.Internal, nil, baseTime)
		require.Error(t, err)
	})

	t.Run("zero_requested_at_fails", func(t *testing.T) {
		driverID := kernel.NewUUID()
		_, err := assignment.NewAssignment(
			kernel.NewUUID(), kernel.NewUUID(), assignment.Internal, &driverID, time.Time{})

		require.Error(t, err)
	})

	t.Run("unconstructed_fails_validate", func(t *testing.T) {
		var a assignment.Assignment

		require.ErrorIs(t, a.Validate(), assignment.ErrAssignmentIsNotConstructed)
	})
}

func TestAssignment_Accept(t *testing.T) {
	t.Run("designated_driver_accepts", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)
		at := baseTime.Add(time.Minute)

		require.NoError(t, a.Accept(driverID, at))
		assert.Equal(t, assignment.Accepted, a.Status())
		require.NotNil(t, a.AcceptedAt())
		assert.Equal(t, at, *a.AcceptedAt())
	})

	t.Run("other_driver_is_rejected", func(t *testing.T) {
		a, _ := newInternalAssignment(t)

		err := a.Accept(kernel.NewUUID(), baseTime.Add(time.Minute))

		require.ErrorIs(t, err, assignment.ErrNotAuthorized)
		assert.Equal(t, assignment.Pending, a.Status())
		assert.Nil(t, a.AcceptedAt())
	})

	t.Run("repeat_accept_fails_and_keeps_timestamp", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)
		first := baseTime.Add(time.Minute)
		require.NoError(t, a.Accept(driverID, first))

		err := a.Accept(driverID, first.Add(time.Minute))

		require.ErrorIs(t, err, assignment.ErrInvalidTransition)
		assert.Equal(t, first, *a.AcceptedAt())
	})

	t.Run("backwards_timestamp_fails", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)

		err := a.Accept(driverID, baseTime.Add(-time.Minute))

		require.Error(t, err)
		assert.Equal(t, assignment.Pending, a.Status())
	})
}

func TestAssignment_ConfirmCourierMatch(t *testing.T) {
	t.Run("external_match", func(t *testing.T) {
		a := newExternalAssignment(t)

		require.NoError(t, a.ConfirmCourierMatch(baseTime.Add(time.Minute)))
		assert.Equal(t, assignment.Accepted, a.Status())
	})

	t.Run("internal_assignment_rejected", func(t *testing.T) {
		a, _ := newInternalAssignment(t)

		require.Error(t, a.ConfirmCourierMatch(baseTime.Add(time.Minute)))
		assert.Equal(t, assignment.Pending, a.Status())
	})
}

func TestAssignment_ConfirmPickup(t *testing.T) {
	t.Run("picks_up_after_accept", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)
		require.NoError(t, a.Accept(driverID, baseTime.Add(time.Minute)))
		at := baseTime.Add(10 * time.Minute)

		require.NoError(t, a.ConfirmPickup(at))
		assert.Equal(t, assignment.PickedUp, a.Status())
		assert.Equal(t, at, *a.PickedUpAt())
	})

	t.Run("pickup_before_accept_fails", func(t *testing.T) {
		a, _ := newInternalAssignment(t)

		err := a.ConfirmPickup(baseTime.Add(time.Minute))

		require.ErrorIs(t, err, assignment.ErrInvalidTransition)
		assert.Nil(t, a.PickedUpAt())
	})

	t.Run("pickup_before_accept_time_fails", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)
		require.NoError(t, a.Accept(driverID, baseTime.Add(time.Hour)))

		err := a.ConfirmPickup(baseTime.Add(time.Minute))

		require.Error(t, err)
		assert.Equal(t, assignment.Accepted, a.Status())
	})
}

func TestAssignment_CompleteDelivery(t *testing.T) {
	advanceToPickedUp := func(t *testing.T) (*assignment.Assignment, kernel.UUID) {
		t.Helper()
		a, driverID := newInternalAssignment(t)
		require.NoError(t, a.Accept(driverID, baseTime.Add(time.Minute)))
		require.NoError(t, a.ConfirmPickup(baseTime.Add(10*time.Minute)))
		return a, driverID
	}

	t.Run("internal_with_proof", func(t *testing.T) {
		a, _ := advanceToPickedUp(t)
		proof := mustProof(t)
		at := baseTime.Add(30 * time.Minute)

		require.NoError(t, a.CompleteDelivery(&proof, at))
		assert.Equal(t, assignment.Delivered, a.Status())
		assert.Equal(t, at, *a.DeliveredAt())
		require.NotNil(t, a.Proof())
		assert.Equal(t, "https://cdn.example/photo.jpg", a.Proof().PhotoURL())
	})

	t.Run("internal_without_proof_fails", func(t *testing.T) {
		a, _ := advanceToPickedUp(t)

		err := a.CompleteDelivery(nil, baseTime.Add(30*time.Minute))

		require.ErrorIs(t, err, assignment.ErrProofArtifactIsRequired)
		assert.Equal(t, assignment.PickedUp, a.Status())
		assert.Nil(t, a.DeliveredAt())
	})

	t.Run("external_without_proof_succeeds", func(t *testing.T) {
		a := newExternalAssignment(t)
		require.NoError(t, a.ConfirmCourierMatch(baseTime.Add(time.Minute)))
		require.NoError(t, a.ConfirmPickup(baseTime.Add(10*time.Minute)))

		require.NoError(t, a.CompleteDelivery(nil, baseTime.Add(30*time.Minute)))
		assert.Equal(t, assignment.Delivered, a.Status())
		assert.Nil(t, a.Proof())
	})

	t.Run("deliver_before_pickup_fails", func(t *testing.T) {
		a, driverID := newInternalAssignment(t)
		require.NoError(t, a.Accept(driverID, baseTime.Add(time.Minute)))
		proof := mustProof(t)

		err := a.CompleteDelivery(&proof, baseTime.Add(30*time.Minute))

		require.ErrorIs(t, err, assignment.ErrInvalidTransition)
	})
}

func TestAssignment_AttachProof(t *testing.T) {
	deliveredExternal := func(t *testing.T) *assignment.Assignment {
		t.Helper()
		a := newExternalAssignment(t)
		require.NoError(t, a.ConfirmCourierMatch(baseTime.Add(time.Minute)))
		require.NoError(t, a.ConfirmPickup(baseTime.Add(10*time.Minute)))
		require.NoError(t, a.CompleteDelivery(nil, baseTime.Add(30*time.Minute)))
		return a
	}

	t.Run("late_proof_on_delivered", func(t *testing.T) {
		a := deliveredExternal(t)
		proof := mustProof(t)

		require.NoError(t, a.AttachProof(proof))
		require.NotNil(t, a.Proof())
	})

	t.Run("attach_twice_fails", func(t *testing.T) {
		a := deliveredExternal(t)
		proof := mustProof(t)
		require.NoError(t, a.AttachProof(proof))

		require.ErrorIs(t, a.AttachProof(proof), assignment.ErrProofAlreadyAttached)
	})

	t.Run("attach_before_delivered_fails", func(t *testing.T) {
		a := newExternalAssignment(t)
		proof := mustProof(t)

		require.ErrorIs(t, a.AttachProof(proof), assignment.ErrInvalidTransition)
	})
}

func TestAssignment_CancelAndFail(t *testing.T) {
	t.Run("cancel_pending", func(t *testing.T) {
		a, _ := newInternalAssignment(t)

		require.NoError(t, a.Cancel())
		assert.Equal(t, assignment.Cancelled, a.Status())
	})

	t.Run("cancel_after_delivery_fails", func(t *testing.T) {
		a := newExternalAssignment(t)
		require.NoError(t, a.ConfirmCourierMatch(baseTime.Add(time.Minute)))
		require.NoError(t, a.ConfirmPickup(baseTime.Add(10*time.Minute)))
		require.NoError(t, a.CompleteDelivery(nil, baseTime.Add(30*time.Minute)))

		require.ErrorIs(t, a.Cancel(), assignment.ErrInvalidTransition)
	})

	t.Run("fail_picked_up", func(t *testing.T) {
		a := newExternalAssignment(t)
		require.NoError(t, a.ConfirmCourierMatch(baseTime.Add(time.Minute)))
		require.NoError(t, a.ConfirmPickup(baseTime.Add(10*time.Minute)))

		require.NoError(t, a.Fail())
		assert.Equal(t, assignment.Failed, a.Status())
	})
}

func TestAssignment_AttachExternalJob(t *testing.T) {
	t.Run("attach_once", func(t *testing.T) {
		a := newExternalAssignment(t)

		require.NoError(t, a.AttachExternalJob("job-123"))
		require.NotNil(t, a.ExternalID())
		assert.Equal(t, "job-123", *a.ExternalID())
	})

	t.Run("attach_twice_fails", func(t *testing.T) {
		a := newExternalAssignment(t)
		require.NoError(t, a.AttachExternalJob("job-123"))

		err := a.AttachExternalJob("job-456")

		require.ErrorIs(t, err, assignment.ErrExternalJobAlreadyAttached)
		assert.Equal(t, "job-123", *a.ExternalID())
	})

	t.Run("internal_assignment_rejects_job", func(t *testing.T) {
		a, _ := newInternalAssignment(t)

		require.Error(t, a.AttachExternalJob("job-123"))
	})

	t.Run("empty_job_id_fails", func(t *testing.T) {
		a := newExternalAssignment(t)

		require.Error(t, a.AttachExternalJob(""))
	})
}

func TestRestoreAssignment(t *testing.T) {
	t.Run("restores_full_state", func(t *testing.T) {
		externalID := "job-789"
		acceptedAt := baseTime.Add(time.Minute)
		pickedUpAt := baseTime.Add(10 * time.Minute)
		deliveredAt := baseTime.Add(30 * time.Minute)
		proof := mustProof(t)

		a, err := assignment.RestoreAssignment(
			kernel.NewUUID(), kernel.NewUUID(), assignment.Stuart,
			nil, &externalID, assignment.Delivered,
			baseTime, &acceptedAt, &pickedUpAt, &deliveredAt,
			&proof, 7)

		require.NoError(t, err)
		require.NoError(t, a.Validate())
		assert.Equal(t, assignment.Delivered, a.Status())
		assert.Equal(t, int64(7), a.Version())
		assert.Equal(t, "job-789", *a.ExternalID())
		assert.Equal(t, deliveredAt, *a.DeliveredAt())
		require.NotNil(t, a.Proof())
	})

	t.Run("invalid_status_fails", func(t *testing.T) {
		_, err := assignment.RestoreAssignment(
			kernel.NewUUID(), kernel.NewUUID(), assignment.Internal,
			nil, nil, assignment.Unknown,
			baseTime, nil, nil, nil, nil, 0)

		require.Error(t, err)
	})
}
