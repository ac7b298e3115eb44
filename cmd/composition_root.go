package cmd

import (
	"fmt"
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/internalcourier"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/ordersource"
	"dispatch/internal/adapters/out/postgres/pingrepo"
	"dispatch/internal/adapters/out/providers"
	"dispatch/internal/adapters/out/rmq"
	"dispatch/internal/adapters/out/stuart"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB          *gorm.DB
	uowFactory      postgres.GormUnitOfWorkFactory
	orderSource     ports.OrderSource
	adapters        ports.AdapterRegistry
	publisher       ports.EventPublisher
	estimator       services.ArrivalEstimator
	defaultProvider assignment.Provider
	logger          *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	defaultProvider, err := assignment.ProviderFromString(config.DefaultProvider)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("invalid default provider: %w", err)
	}

	stuartClient, err := stuart.NewClient(config.StuartBaseURL, config.StuartAPIKey)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("creating stuart client: %w", err)
	}
	stuartAdapter, err := stuart.NewAdapter(stuartClient)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("creating stuart adapter: %w", err)
	}

	registry, err := providers.NewRegistry(internalcourier.NewAdapter(), stuartAdapter)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("building adapter registry: %w", err)
	}

	publisher, err := rmq.NewPublisher(config.RabbitMQURL, logger)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("creating event publisher: %w", err)
	}

	speed := config.AverageSpeedMPS
	if speed <= 0 {
		speed = services.DefaultAverageSpeedMPS
	}
	estimator, err := services.NewArrivalEstimator(speed)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("creating arrival estimator: %w", err)
	}

	return CompositionRoot{
		gormDB:          gormDB,
		uowFactory:      *postgres.NewGormUnitOfWorkFactory(gormDB),
		orderSource:     ordersource.NewGormOrderSource(gormDB),
		adapters:        registry,
		publisher:       publisher,
		estimator:       estimator,
		defaultProvider: defaultProvider,
		logger:          logger,
	}, nil
}

// Close releases outbound connections.
func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

func (c *CompositionRoot) CreateAssignOrderCommandHandler() (commands.AssignOrderCommandHandler, error) {
	var f commands.DispatchUoWFactory = FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignOrderCommandHandler(
		f, c.orderSource, c.adapters, c.publisher, c.defaultProvider, c.logger)
}

func (c *CompositionRoot) CreateAcceptAssignmentCommandHandler() commands.AcceptAssignmentCommandHandler {
	var f commands.AssignmentUoWFactory = FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptAssignmentCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateConfirmPickupCommandHandler() commands.ConfirmPickupCommandHandler {
	var f commands.AssignmentUoWFactory = FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmPickupCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	var f commands.DispatchUoWFactory = FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteDeliveryCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateCancelAssignmentCommandHandler() commands.CancelAssignmentCommandHandler {
	var f commands.DispatchUoWFactory = FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelAssignmentCommandHandler(f, c.adapters, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateRecordPingCommandHandler() commands.RecordPingCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordPingCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateApplyExternalEventCommandHandler() commands.ApplyExternalEventCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyExternalEventCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateSyncExternalAssignmentsCommandHandler() commands.SyncExternalAssignmentsCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSyncExternalAssignmentsCommandHandler(f, c.adapters, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetCurrentLocationQueryHandler() queries.GetCurrentLocationQueryHandler {
	return queries.NewGetCurrentLocationQueryHandler(c.gormDB, pingrepo.NewGormPingRepository(c.gormDB))
}

func (c *CompositionRoot) CreateGetETAQueryHandler() queries.GetETAQueryHandler {
	return queries.NewGetETAQueryHandler(
		c.gormDB, pingrepo.NewGormPingRepository(c.gormDB), c.adapters, c.orderSource, c.estimator)
}

func (c *CompositionRoot) CreateGetProofOfDeliveryQueryHandler() queries.GetProofOfDeliveryQueryHandler {
	return queries.NewGetProofOfDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateServer() (*httpin.Server, error) {
	assignOrderHandler, err := c.CreateAssignOrderCommandHandler()
	if err != nil {
		return nil, err
	}

	return httpin.NewServer(
		assignOrderHandler,
		c.CreateAcceptAssignmentCommandHandler(),
		c.CreateConfirmPickupCommandHandler(),
		c.CreateCompleteDeliveryCommandHandler(),
		c.CreateCancelAssignmentCommandHandler(),
		c.CreateRecordPingCommandHandler(),
		c.CreateApplyExternalEventCommandHandler(),
		c.CreateGetCurrentLocationQueryHandler(),
		c.CreateGetETAQueryHandler(),
		c.CreateGetProofOfDeliveryQueryHandler(),
	), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateSyncExternalAssignmentsCommandHandler(), c.logger)
}

type FuncAssignmentUoWFactory func() commands.AssignmentUoW

func (f FuncAssignmentUoWFactory) Create() commands.AssignmentUoW {
	return f()
}

type FuncTrackingUoWFactory func() commands.TrackingUoW

func (f FuncTrackingUoWFactory) Create() commands.TrackingUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}
