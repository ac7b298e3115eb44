package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/assignmentrepo"
	"dispatch/internal/adapters/out/postgres/pingrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockOrderSource struct{ mock.Mock }

func (m *MockOrderSource) GetConfirmed(ctx context.Context, orderID kernel.UUID) (ports.OrderSnapshot, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(ports.OrderSnapshot), args.Error(1)
}

type MockAdapterRegistry struct{ mock.Mock }

func (m *MockAdapterRegistry) Resolve(provider assignment.Provider) (ports.ProviderAdapter, error) {
	args := m.Called(provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ProviderAdapter), args.Error(1)
}

type MockProviderAdapter struct{ mock.Mock }

func (m *MockProviderAdapter) Provider() assignment.Provider {
	args := m.Called()
	return args.Get(0).(assignment.Provider)
}

func (m *MockProviderAdapter) CreateJob(ctx context.Context, request ports.JobRequest) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

func (m *MockProviderAdapter) GetJob(ctx context.Context, externalID string) (ports.JobSnapshot, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(ports.JobSnapshot), args.Error(1)
}

func (m *MockProviderAdapter) GetETA(
	ctx context.Context, externalID string, kind ports.ETAKind,
) (time.Duration, error) {
	args := m.Called(ctx, externalID, kind)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockProviderAdapter) CancelJob(ctx context.Context, externalID string, reason string) error {
	args := m.Called(ctx, externalID, reason)
	return args.Error(0)
}

// QueryHandlersIntegrationTestSuite exercises the read-side handlers against a
// real PostgreSQL database, seeded through the write-side repositories.
type QueryHandlersIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
func (suite *QueryHandlersIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&assignmentrepo.AssignmentDTO{}, &pingrepo.PingDTO{})
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
func (suite *QueryHandlersIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE assignments, pings").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *QueryHandlersIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *QueryHandlersIntegrationTestSuite) locationHandler() queries.GetCurrentLocationQueryHandler {
	return queries.NewGetCurrentLocationQueryHandler(suite.db, pingrepo.NewGormPingRepository(suite.db))
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCurrentLocation_LatestPingWins() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	aggregate := suite.seedExternalAssignment(orderID, "job-loc-1")

	base := time.Now().UTC().Truncate(time.Second)
	suite.appendPing(aggregate.ID(), 51.5074, -0.1278, base)
	suite.appendPing(aggregate.ID(), 51.5100, -0.1200, base.Add(2*time.Minute))

	query, err := queries.NewGetCurrentLocationQuery(orderID)
	suite.Require().NoError(err)

	response, err := suite.locationHandler().Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(aggregate.ID(), response.AssignmentID)
	suite.Equal(assignment.Pending.String(), response.Status)
	suite.Require().NotNil(response.Position)
	suite.InDelta(51.5100, response.Position.Latitude(), 1e-9)
	suite.InDelta(-0.1200, response.Position.Longitude(), 1e-9)
	suite.Equal(base.Add(2*time.Minute), response.RecordedAt.UTC())
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCurrentLocation_NoPingsYet() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	aggregate := suite.seedExternalAssignment(orderID, "job-loc-2")

	query, err := queries.NewGetCurrentLocationQuery(orderID)
	suite.Require().NoError(err)

	// Assigned but silent so far: the answer is "position unknown", not 404.
	response, err := suite.locationHandler().Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(aggregate.ID(), response.AssignmentID)
	suite.Nil(response.Position)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCurrentLocation_NoActiveAssignment() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	query, err := queries.NewGetCurrentLocationQuery(orderID)
	suite.Require().NoError(err)

	_, err = suite.locationHandler().Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	// A cancelled assignment does not count as active either.
	cancelled := suite.seedExternalAssignment(orderID, "job-loc-3")
	suite.Require().NoError(cancelled.Cancel())
	repo := suite.factory.Create().AssignmentRepository()
	suite.Require().NoError(repo.Update(ctx, cancelled))

	_, err = suite.locationHandler().Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetETA_InternalEstimate() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	driverID := kernel.NewUUID()
	aggregate := suite.seedInternalAssignment(orderID, driverID)

	suite.appendPing(aggregate.ID(), 51.5074, -0.1278, time.Now().UTC().Truncate(time.Second))

	dropoff, err := kernel.NewGeoPoint(51.5155, -0.0922)
	suite.Require().NoError(err)
	orderSource := new(MockOrderSource)
	orderSource.On("GetConfirmed", ctx, orderID).
		Return(ports.OrderSnapshot{ID: orderID, Confirmed: true, DropoffPoint: dropoff}, nil).Once()

	handler := suite.etaHandler(orderSource, new(MockAdapterRegistry))
	query, err := queries.NewGetETAQuery(orderID, ports.ETAToDropoff)
	suite.Require().NoError(err)

	response, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(aggregate.ID(), response.AssignmentID)
	suite.True(response.Estimated, "Straight-line heuristic must be flagged as estimated")
	suite.Require().NotNil(response.ETA)
	suite.Positive(*response.ETA)
	orderSource.AssertExpectations(suite.T())
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetETA_InternalNoPingsYet() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	suite.seedInternalAssignment(orderID, kernel.NewUUID())

	orderSource := new(MockOrderSource)
	handler := suite.etaHandler(orderSource, new(MockAdapterRegistry))
	query, err := queries.NewGetETAQuery(orderID, ports.ETAToDropoff)
	suite.Require().NoError(err)

	// Nothing to estimate from yet, so the ETA is simply unknown.
	response, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.True(response.Estimated)
	suite.Nil(response.ETA)
	orderSource.AssertNotCalled(suite.T(), "GetConfirmed", mock.Anything, mock.Anything)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetETA_ExternalUsesProviderEstimate() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	aggregate := suite.seedExternalAssignment(orderID, "job-eta-1")

	adapter := new(MockProviderAdapter)
	adapter.On("GetETA", ctx, "job-eta-1", ports.ETAToDropoff).
		Return(7*time.Minute, nil).Once()
	adapters := new(MockAdapterRegistry)
	adapters.On("Resolve", assignment.Stuart).Return(adapter, nil).Once()

	handler := suite.etaHandler(new(MockOrderSource), adapters)
	query, err := queries.NewGetETAQuery(orderID, ports.ETAToDropoff)
	suite.Require().NoError(err)

	response, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(aggregate.ID(), response.AssignmentID)
	suite.False(response.Estimated, "Provider estimates are routed, not heuristic")
	suite.Require().NotNil(response.ETA)
	suite.Equal(7*time.Minute, *response.ETA)
	adapter.AssertExpectations(suite.T())
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetETA_NoActiveAssignment() {
	ctx := context.Background()

	handler := suite.etaHandler(new(MockOrderSource), new(MockAdapterRegistry))
	query, err := queries.NewGetETAQuery(kernel.NewUUID(), ports.ETAToPickup)
	suite.Require().NoError(err)

	_, err = handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetProofOfDelivery_NullUntilDelivered() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	aggregate := suite.seedExternalAssignment(orderID, "job-pod-1")

	handler := queries.NewGetProofOfDeliveryQueryHandler(suite.db)
	query, err := queries.NewGetProofOfDeliveryQuery(orderID)
	suite.Require().NoError(err)

	// Polling before completion reports the current status without proof.
	response, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(aggregate.ID(), response.AssignmentID)
	suite.False(response.HasProof)
	suite.Nil(response.DeliveredAt)

	at := time.Now().UTC().Truncate(time.Second)
	proof, err := assignment.NewProof("https://cdn.example.com/pod/photo.jpg", "", "left at reception")
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.ConfirmCourierMatch(at))
	suite.Require().NoError(aggregate.ConfirmPickup(at.Add(5 * time.Minute)))
	suite.Require().NoError(aggregate.CompleteDelivery(&proof, at.Add(20*time.Minute)))
	repo := suite.factory.Create().AssignmentRepository()
	suite.Require().NoError(repo.Update(ctx, aggregate))

	response, err = handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.True(response.HasProof)
	suite.Equal("https://cdn.example.com/pod/photo.jpg", response.PhotoURL)
	suite.Equal("left at reception", response.Notes)
	suite.Require().NotNil(response.DeliveredAt)
	suite.Equal(assignment.Delivered.String(), response.Status)

	// An order that never had an assignment is the only not-found case.
	unknown, err := queries.NewGetProofOfDeliveryQuery(kernel.NewUUID())
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, unknown)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) etaHandler(
	orderSource ports.OrderSource, adapters ports.AdapterRegistry,
) queries.GetETAQueryHandler {
	estimator, err := services.NewArrivalEstimator(services.DefaultAverageSpeedMPS)
	suite.Require().NoError(err)
	return queries.NewGetETAQueryHandler(
		suite.db, pingrepo.NewGormPingRepository(suite.db), adapters, orderSource, estimator)
}

// seedExternalAssignment persists a pending external assignment for the order.
func (suite *QueryHandlersIntegrationTestSuite) seedExternalAssignment(
	orderID kernel.UUID, externalID string,
) *assignment.Assignment {
	a, err := assignment.NewAssignment(
		kernel.NewUUID(), orderID, assignment.Stuart, nil, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(a.AttachExternalJob(externalID))
	suite.Require().NoError(suite.factory.Create().AssignmentRepository().Add(context.Background(), a))
	return a
}

// seedInternalAssignment persists a pending internal assignment for the order.
func (suite *QueryHandlersIntegrationTestSuite) seedInternalAssignment(
	orderID, driverID kernel.UUID,
) *assignment.Assignment {
	a, err := assignment.NewAssignment(
		kernel.NewUUID(), orderID, assignment.Internal, &driverID, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().AssignmentRepository().Add(context.Background(), a))
	return a
}

// appendPing stores one courier position report.
func (suite *QueryHandlersIntegrationTestSuite) appendPing(
	assignmentID kernel.UUID, latitude, longitude float64, recordedAt time.Time,
) {
	position, err := kernel.NewGeoPoint(latitude, longitude)
	suite.Require().NoError(err)
	ping, err := tracking.NewPing(kernel.NewUUID(), assignmentID, position, recordedAt, 8, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(pingrepo.NewGormPingRepository(suite.db).Append(context.Background(), ping))
}

func TestQueryHandlersIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersIntegrationTestSuite))
}
