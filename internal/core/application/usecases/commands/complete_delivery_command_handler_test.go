package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompleteDeliveryCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()

	engaged, err := driver.NewDriver(kernel.NewUUID(), "Alice", 4.5)
	require.NoError(t, err)
	engaged.GoOnline()
	require.NoError(t, engaged.Engage())

	driverID := engaged.ID()
	aggregate, err := assignment.NewAssignment(
		kernel.NewUUID(), kernel.NewUUID(), assignment.Internal, &driverID, baseTestTime())
	require.NoError(t, err)
	require.NoError(t, aggregate.Accept(driverID, baseTestTime().Add(time.Minute)))
	require.NoError(t, aggregate.ConfirmPickup(baseTestTime().Add(10*time.Minute)))

	cmd, err := commands.NewCompleteDeliveryCommand(
		aggregate.ID(), driverID, "https://cdn.example/photo.jpg", "", "left with neighbour")
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockDispatchUoW)
	publisher := new(MockEventPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		assignmentRepo.On("Update", ctx, aggregate).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		driverRepo.On("Get", ctx, driverID).Return(engaged, nil).Once(),
		driverRepo.On("Update", ctx, engaged).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	publisher.On("PublishAssignmentChanged", ctx, mock.AnythingOfType("ports.AssignmentEvent")).
		Return(nil).Once()

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteDeliveryCommandHandler(factory, publisher, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, assignment.Delivered, aggregate.Status())
	require.NotNil(t, aggregate.Proof())
	assert.Equal(t, driver.Available, engaged.Availability())
}

func TestCompleteDeliveryCommandHandler_Handle_WrongDriver(t *testing.T) {
	ctx := t.Context()
	driverID := kernel.NewUUID()
	aggregate := pendingInternalAssignment(t, driverID)
	require.NoError(t, aggregate.Accept(driverID, baseTestTime().Add(time.Minute)))
	require.NoError(t, aggregate.ConfirmPickup(baseTestTime().Add(10*time.Minute)))

	cmd, err := commands.NewCompleteDeliveryCommand(
		aggregate.ID(), kernel.NewUUID(), "https://cdn.example/photo.jpg", "", "")
	require.NoError(t, err)

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockDispatchUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		assignmentRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteDeliveryCommandHandler(
		factory, new(MockEventPublisher), testLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, assignment.ErrNotAuthorized)
	assert.Equal(t, assignment.PickedUp, aggregate.Status())
}

func TestNewCompleteDeliveryCommand_RequiresProofArtifact(t *testing.T) {
	_, err := commands.NewCompleteDeliveryCommand(
		kernel.NewUUID(), kernel.NewUUID(), "", "", "just notes")

	require.ErrorIs(t, err, assignment.ErrProofArtifactIsRequired)
}
