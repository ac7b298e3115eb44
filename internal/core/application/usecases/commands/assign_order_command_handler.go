package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrOrderAlreadyAssigned is returned when the order already has an active
// (non-cancelled, non-failed) assignment. The existing assignment must be
// cancelled before a new one can be created.
var ErrOrderAlreadyAssigned = errors.New("order already has an active assignment")

const (
	createJobAttempts   = 3
	createJobRetryDelay = 100 * time.Millisecond
)

// AssignOrderCommandHandler creates a delivery assignment for a confirmed
// order: it picks the provider, selects and engages a driver for internal
// fulfillment, or creates the remote job for external fulfillment.
//
// Provider policy:
//   - an explicit provider on the command always wins
//   - otherwise the configured default provider is used
//   - when the default is internal and no driver is available, dispatch
//     falls back to the external provider instead of failing the order
//
// External job creation happens inside the same transaction as the
// assignment insert: when the provider rejects the job the assignment is
// persisted in Failed state so the attempt is auditable, and the handler
// returns ports.ErrProviderUnavailable.
type AssignOrderCommandHandler struct {
	uowFactory      DispatchUoWFactory
	orderSource     ports.OrderSource
	adapters        ports.AdapterRegistry
	publisher       ports.EventPublisher
	selector        services.DriverSelector
	defaultProvider assignment.Provider
	logger          *slog.Logger
}

// NewAssignOrderCommandHandler creates a handler for order dispatch.
func NewAssignOrderCommandHandler(
	uowFactory DispatchUoWFactory,
	orderSource ports.OrderSource,
	adapters ports.AdapterRegistry,
	publisher ports.EventPublisher,
	defaultProvider assignment.Provider,
	logger *slog.Logger,
) (AssignOrderCommandHandler, error) {
	if err := defaultProvider.Validate(); err != nil {
		return AssignOrderCommandHandler{}, err
	}

	return AssignOrderCommandHandler{
		uowFactory:      uowFactory,
		orderSource:     orderSource,
		adapters:        adapters,
		publisher:       publisher,
		selector:        services.NewDriverSelector(),
		defaultProvider: defaultProvider,
		logger:          logger,
	}, nil
}

// Handle processes the dispatch command and returns the created assignment.
func (h AssignOrderCommandHandler) Handle(
	ctx context.Context, command AssignOrderCommand,
) (*assignment.Assignment, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignmentRepo := uow.AssignmentRepository()

	_, err := assignmentRepo.GetActiveByOrderID(ctx, command.OrderID())
	if err == nil {
		return nil, ErrOrderAlreadyAssigned
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	order, err := h.orderSource.GetConfirmed(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	created, createErr := h.dispatch(ctx, uow, command, order)
	if created == nil {
		return nil, createErr
	}

	if err = assignmentRepo.Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishAssignmentEvent(ctx, h.publisher, h.logger, created)

	// createErr is non-nil on the persisted-as-Failed path.
	return created, createErr
}

// dispatch builds the assignment for the chosen provider. It returns a
// non-nil assignment whenever something should be persisted, even if the
// dispatch itself failed.
func (h AssignOrderCommandHandler) dispatch(
	ctx context.Context,
	uow DispatchUoW,
	command AssignOrderCommand,
	order ports.OrderSnapshot,
) (*assignment.Assignment, error) {
	provider := command.Provider()
	allowFallback := provider == assignment.ProviderUnknown
	if allowFallback {
		provider = h.defaultProvider
	}

	if !provider.IsExternal() {
		created, err := h.dispatchInternal(ctx, uow, command, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, services.ErrNoDriverAvailable) || !allowFallback {
			return nil, err
		}

		h.logger.Info("no internal driver available, falling back to external provider",
			"order_id", command.OrderID().String())
		provider = assignment.Stuart
	}

	return h.dispatchExternal(ctx, provider, command, order)
}

// dispatchInternal selects the best available driver, engages them, and
// builds the assignment.
func (h AssignOrderCommandHandler) dispatchInternal(
	ctx context.Context,
	uow DispatchUoW,
	command AssignOrderCommand,
	order ports.OrderSnapshot,
) (*assignment.Assignment, error) {
	driverRepo := uow.DriverRepository()

	candidates, err := driverRepo.GetAllAvailable(ctx)
	if err != nil {
		return nil, err
	}

	best, err := h.selector.Select(order.PickupPoint, candidates)
	if err != nil {
		return nil, err
	}

	if err = best.Engage(); err != nil {
		return nil, err
	}
	if err = driverRepo.Update(ctx, best); err != nil {
		return nil, err
	}

	driverID := best.ID()
	return assignment.NewAssignment(
		command.AssignmentID(), command.OrderID(), assignment.Internal, &driverID, time.Now().UTC())
}

// dispatchExternal creates the remote job and builds the assignment. A
// provider failure yields the assignment in Failed state alongside the error
// so the attempt is persisted.
func (h AssignOrderCommandHandler) dispatchExternal(
	ctx context.Context,
	provider assignment.Provider,
	command AssignOrderCommand,
	order ports.OrderSnapshot,
) (*assignment.Assignment, error) {
	adapter, err := h.adapters.Resolve(provider)
	if err != nil {
		return nil, err
	}

	created, err := assignment.NewAssignment(
		command.AssignmentID(), command.OrderID(), provider, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	externalID, err := h.createJobWithRetry(ctx, adapter, ports.JobRequest{
		AssignmentID:   command.AssignmentID(),
		OrderID:        command.OrderID(),
		PickupAddress:  order.PickupAddress,
		PickupPoint:    order.PickupPoint,
		PickupContact:  order.PickupContact,
		DropoffAddress: order.DropoffAddress,
		DropoffPoint:   order.DropoffPoint,
		DropoffContact: order.DropoffContact,
		PackageNote:    order.PackageNote,
	})
	if err != nil {
		h.logger.Error("external job creation failed",
			"order_id", command.OrderID().String(),
			"provider", provider.String(),
			"error", err)

		if failErr := created.Fail(); failErr != nil {
			return nil, failErr
		}
		return created, fmt.Errorf("creating %s job: %w", provider, err)
	}

	if err = created.AttachExternalJob(externalID); err != nil {
		return nil, err
	}

	return created, nil
}

// createJobWithRetry retries job creation on transient provider outages. Only
// ErrProviderUnavailable is retried: any other failure means the provider saw
// the request, and calling again could create a duplicate remote job.
func (h AssignOrderCommandHandler) createJobWithRetry(
	ctx context.Context,
	adapter ports.ProviderAdapter,
	request ports.JobRequest,
) (string, error) {
	var (
		externalID string
		err        error
	)

	for attempt := 1; attempt <= createJobAttempts; attempt++ {
		externalID, err = adapter.CreateJob(ctx, request)
		if err == nil || !errors.Is(err, ports.ErrProviderUnavailable) {
			return externalID, err
		}

		if attempt < createJobAttempts {
			h.logger.Warn("provider unavailable, retrying job creation",
				"order_id", request.OrderID.String(),
				"attempt", attempt)
			time.Sleep(time.Duration(attempt) * createJobRetryDelay)
		}
	}

	return "", err
}
