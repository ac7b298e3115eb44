package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func externalAssignmentWithJob(t *testing.T, externalID string) *assignment.Assignment {
	t.Helper()

	a, err := assignment.NewAssignment(
		kernel.NewUUID(), kernel.NewUUID(), assignment.Stuart, nil, baseTestTime())
	require.NoError(t, err)
	require.NoError(t, a.AttachExternalJob(externalID))

	return a
}

func TestApplyExternalEventCommandHandler_Handle_CatchesUpToDelivered(t *testing.T) {
	ctx := t.Context()
	aggregate := externalAssignmentWithJob(t, "job-7")

	proof, err := assignment.NewProof("https://stuart.example/pod.jpg", "", "")
	require.NoError(t, err)
	cmd, err := commands.NewApplyExternalEventCommand(
		"job-7", assignment.Delivered, nil, &proof, baseTestTime().Add(time.Hour))
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockTrackingUoW)
	publisher := new(MockEventPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("GetByExternalID", ctx, "job-7").Return(aggregate, nil).Once(),
		assignmentRepo.On("Update", ctx, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	publisher.On("PublishAssignmentChanged", ctx, mock.AnythingOfType("ports.AssignmentEvent")).
		Return(nil).Once()

	factory := new(MockTrackingUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewApplyExternalEventCommandHandler(factory, publisher, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	// The skipped milestones were replayed with the event time.
	assert.Equal(t, assignment.Delivered, aggregate.Status())
	assert.NotNil(t, aggregate.AcceptedAt())
	assert.NotNil(t, aggregate.PickedUpAt())
	assert.NotNil(t, aggregate.DeliveredAt())
	require.NotNil(t, aggregate.Proof())
	publisher.AssertExpectations(t)
}

func TestApplyExternalEventCommandHandler_Handle_ReplayIsIdempotent(t *testing.T) {
	ctx := t.Context()
	aggregate := externalAssignmentWithJob(t, "job-7")
	require.NoError(t, aggregate.ConfirmCourierMatch(baseTestTime().Add(time.Minute)))

	cmd, err := commands.NewApplyExternalEventCommand(
		"job-7", assignment.Accepted, nil, nil, baseTestTime().Add(time.Minute))
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockTrackingUoW)
	publisher := new(MockEventPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("GetByExternalID", ctx, "job-7").Return(aggregate, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTrackingUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewApplyExternalEventCommandHandler(factory, publisher, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assignmentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishAssignmentChanged", mock.Anything, mock.Anything)
}

func TestApplyExternalEventCommandHandler_Handle_PendingReportIsANoOp(t *testing.T) {
	ctx := t.Context()
	aggregate := externalAssignmentWithJob(t, "job-7")

	// Providers keep reporting pending while they search for a courier.
	cmd, err := commands.NewApplyExternalEventCommand(
		"job-7", assignment.Pending, nil, nil, baseTestTime().Add(time.Minute))
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockTrackingUoW)
	publisher := new(MockEventPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("GetByExternalID", ctx, "job-7").Return(aggregate, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTrackingUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewApplyExternalEventCommandHandler(factory, publisher, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, assignment.Pending, aggregate.Status())
	assignmentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishAssignmentChanged", mock.Anything, mock.Anything)
}

func TestApplyExternalEventCommandHandler_Handle_RecordsCourierPosition(t *testing.T) {
	ctx := t.Context()
	aggregate := externalAssignmentWithJob(t, "job-7")

	position, err := kernel.NewGeoPoint(51.5074, -0.1278)
	require.NoError(t, err)
	cmd, err := commands.NewApplyExternalEventCommand(
		"job-7", assignment.Accepted, &position, nil, baseTestTime().Add(time.Minute))
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	pingRepo := new(MockPingRepository)
	uow := new(MockTrackingUoW)
	publisher := new(MockEventPublisher)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("AssignmentRepository").Return(assignmentRepo).Once()
	assignmentRepo.On("GetByExternalID", ctx, "job-7").Return(aggregate, nil).Once()
	assignmentRepo.On("Update", ctx, aggregate).Return(nil).Once()
	uow.On("PingRepository").Return(pingRepo).Once()
	pingRepo.On("Append", ctx, mock.AnythingOfType("tracking.Ping")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	publisher.On("PublishAssignmentChanged", ctx, mock.AnythingOfType("ports.AssignmentEvent")).
		Return(nil).Once()

	factory := new(MockTrackingUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewApplyExternalEventCommandHandler(factory, publisher, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, assignment.Accepted, aggregate.Status())
	pingRepo.AssertExpectations(t)
}

func TestApplyExternalEventCommandHandler_Handle_UnknownJobDropped(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewApplyExternalEventCommand(
		"job-unknown", assignment.Accepted, nil, nil, baseTestTime())
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockTrackingUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("GetByExternalID", ctx, "job-unknown").Return(nil, errs.ErrObjectNotFound).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTrackingUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewApplyExternalEventCommandHandler(
		factory, new(MockEventPublisher), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
}

func TestApplyExternalEventCommandHandler_Handle_StaleAfterLocalCancel(t *testing.T) {
	ctx := t.Context()
	aggregate := externalAssignmentWithJob(t, "job-7")
	require.NoError(t, aggregate.Cancel())

	cmd, err := commands.NewApplyExternalEventCommand(
		"job-7", assignment.PickedUp, nil, nil, baseTestTime().Add(time.Minute))
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockTrackingUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("GetByExternalID", ctx, "job-7").Return(aggregate, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTrackingUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewApplyExternalEventCommandHandler(
		factory, new(MockEventPublisher), testLogger())
	err = handler.Handle(ctx, cmd)

	// The local cancel wins; the stale report changes nothing.
	require.NoError(t, err)
	assert.Equal(t, assignment.Cancelled, aggregate.Status())
	assignmentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
