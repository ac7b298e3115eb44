// Package http exposes the dispatch API over echo. Handlers translate between
// transport DTOs and application commands/queries; all business rules live
// below this layer.
package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	assignOrderHandler      commands.AssignOrderCommandHandler
	acceptHandler           commands.AcceptAssignmentCommandHandler
	confirmPickupHandler    commands.ConfirmPickupCommandHandler
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler
	cancelHandler           commands.CancelAssignmentCommandHandler
	recordPingHandler       commands.RecordPingCommandHandler
	webhookHandler          commands.ApplyExternalEventCommandHandler

	locationHandler queries.GetCurrentLocationQueryHandler
	etaHandler      queries.GetETAQueryHandler
	proofHandler    queries.GetProofOfDeliveryQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	assignOrderHandler commands.AssignOrderCommandHandler,
	acceptHandler commands.AcceptAssignmentCommandHandler,
	confirmPickupHandler commands.ConfirmPickupCommandHandler,
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler,
	cancelHandler commands.CancelAssignmentCommandHandler,
	recordPingHandler commands.RecordPingCommandHandler,
	webhookHandler commands.ApplyExternalEventCommandHandler,
	locationHandler queries.GetCurrentLocationQueryHandler,
	etaHandler queries.GetETAQueryHandler,
	proofHandler queries.GetProofOfDeliveryQueryHandler,
) *Server {
	return &Server{
		assignOrderHandler:      assignOrderHandler,
		acceptHandler:           acceptHandler,
		confirmPickupHandler:    confirmPickupHandler,
		completeDeliveryHandler: completeDeliveryHandler,
		cancelHandler:           cancelHandler,
		recordPingHandler:       recordPingHandler,
		webhookHandler:          webhookHandler,
		locationHandler:         locationHandler,
		etaHandler:              etaHandler,
		proofHandler:            proofHandler,
	}
}

// RegisterRoutes wires the API routes onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders/:orderId/assignment", s.AssignOrder)
	api.GET("/orders/:orderId/location", s.GetLocation)
	api.GET("/orders/:orderId/eta", s.GetETA)
	api.GET("/orders/:orderId/proof-of-delivery", s.GetProofOfDelivery)

	api.POST("/assignments/:id/accept", s.AcceptAssignment)
	api.POST("/assignments/:id/pickup", s.ConfirmPickup)
	api.POST("/assignments/:id/deliver", s.CompleteDelivery)
	api.POST("/assignments/:id/cancel", s.CancelAssignment)
	api.POST("/assignments/:id/pings", s.RecordPing)

	e.POST("/webhooks/courier", s.CourierWebhook)
	e.GET("/health", s.Health)
}

// AssignOrder handles POST /api/v1/orders/:orderId/assignment.
func (s *Server) AssignOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var request AssignOrderRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return badRequest(ctx, "invalid request body")
	}

	provider := assignment.ProviderUnknown
	if request.Provider != "" {
		provider, err = assignment.ProviderFromString(request.Provider)
		if err != nil {
			return badRequest(ctx, "unknown provider: "+request.Provider)
		}
	}

	cmd, err := commands.NewAssignOrderCommand(kernel.NewUUID(), orderID, provider)
	if err != nil {
		return writeError(ctx, err)
	}

	created, err := s.assignOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		// A failed external dispatch still persists the assignment; answer
		// with the provider error so the caller can retry or re-route.
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toAssignmentResponse(created))
}

// AcceptAssignment handles POST /api/v1/assignments/:id/accept.
func (s *Server) AcceptAssignment(ctx echo.Context) error {
	assignmentID, driverID, err := bindDriverAction(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewAcceptAssignmentCommand(assignmentID, driverID)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.acceptHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ConfirmPickup handles POST /api/v1/assignments/:id/pickup.
func (s *Server) ConfirmPickup(ctx echo.Context) error {
	assignmentID, driverID, err := bindDriverAction(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewConfirmPickupCommand(assignmentID, driverID)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.confirmPickupHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteDelivery handles POST /api/v1/assignments/:id/deliver.
func (s *Server) CompleteDelivery(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid assignment id")
	}

	var request CompleteDeliveryRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return badRequest(ctx, "invalid request body")
	}

	driverID, err := kernel.UUIDFromString(request.DriverID)
	if err != nil {
		return badRequest(ctx, "invalid driver id")
	}

	cmd, err := commands.NewCompleteDeliveryCommand(
		assignmentID, driverID, request.PhotoURL, request.SignatureURL, request.Notes)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.completeDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelAssignment handles POST /api/v1/assignments/:id/cancel.
func (s *Server) CancelAssignment(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid assignment id")
	}

	var request CancelAssignmentRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewCancelAssignmentCommand(assignmentID, request.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.cancelHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordPing handles POST /api/v1/assignments/:id/pings. Reports for unknown
// or closed assignments are dropped below, so the endpoint always answers 202
// for well-formed payloads.
func (s *Server) RecordPing(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid assignment id")
	}

	var request RecordPingRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewRecordPingCommand(
		assignmentID, request.Latitude, request.Longitude, request.RecordedAt, request.AccuracyMeters,
		request.Metadata)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.recordPingHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusAccepted)
}

// CourierWebhook handles POST /webhooks/courier. Unknown jobs are logged and
// dropped below; the provider always gets a 204 so it stops retrying.
func (s *Server) CourierWebhook(ctx echo.Context) error {
	var request CourierWebhookRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return badRequest(ctx, "invalid request body")
	}

	status, err := assignment.StatusFromString(request.Status)
	if err != nil {
		return badRequest(ctx, "unknown status: "+request.Status)
	}

	var position *kernel.GeoPoint
	if request.Latitude != nil && request.Longitude != nil {
		point, pointErr := kernel.NewGeoPoint(*request.Latitude, *request.Longitude)
		if pointErr != nil {
			return badRequest(ctx, "invalid courier position")
		}
		position = &point
	}

	var proof *assignment.Proof
	if request.Proof != nil {
		p, proofErr := assignment.NewProof(
			request.Proof.PhotoURL, request.Proof.SignatureURL, request.Proof.Notes)
		if proofErr != nil {
			return badRequest(ctx, "invalid proof payload")
		}
		proof = &p
	}

	cmd, err := commands.NewApplyExternalEventCommand(
		request.JobID, status, position, proof, request.OccurredAt)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.webhookHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetLocation handles GET /api/v1/orders/:orderId/location.
func (s *Server) GetLocation(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	query, err := queries.NewGetCurrentLocationQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	location, err := s.locationHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := LocationResponse{
		AssignmentID: location.AssignmentID.String(),
		Status:       location.Status,
	}
	if location.Position != nil {
		response.Position = &PositionPayload{
			Latitude:       location.Position.Latitude(),
			Longitude:      location.Position.Longitude(),
			RecordedAt:     location.RecordedAt,
			AccuracyMeters: location.AccuracyMeters,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetETA handles GET /api/v1/orders/:orderId/eta?leg=pickup|dropoff.
func (s *Server) GetETA(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	kind := ports.ETAToDropoff
	switch ctx.QueryParam("leg") {
	case "", "dropoff":
	case "pickup":
		kind = ports.ETAToPickup
	default:
		return badRequest(ctx, "leg must be pickup or dropoff")
	}

	query, err := queries.NewGetETAQuery(orderID, kind)
	if err != nil {
		return writeError(ctx, err)
	}

	eta, err := s.etaHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := ETAResponse{
		AssignmentID: eta.AssignmentID.String(),
		Leg:          eta.Kind.String(),
		Estimated:    eta.Estimated,
	}
	if eta.ETA != nil {
		seconds := int64(eta.ETA.Seconds())
		response.ETASeconds = &seconds
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetProofOfDelivery handles GET /api/v1/orders/:orderId/proof-of-delivery.
func (s *Server) GetProofOfDelivery(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	query, err := queries.NewGetProofOfDeliveryQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	proof, err := s.proofHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := ProofOfDeliveryResponse{
		AssignmentID: proof.AssignmentID.String(),
		Status:       proof.Status,
		DeliveredAt:  proof.DeliveredAt,
	}
	if proof.HasProof {
		response.Proof = &ProofPayload{
			PhotoURL:     proof.PhotoURL,
			SignatureURL: proof.SignatureURL,
			Notes:        proof.Notes,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// bindDriverAction extracts the assignment id from the path and the driver id
// from the body.
func bindDriverAction(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid assignment id")
	}

	var request DriverActionRequest
	if bindErr := ctx.Bind(&request); bindErr != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid request body")
	}

	driverID, err := kernel.UUIDFromString(request.DriverID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid driver id")
	}

	return assignmentID, driverID, nil
}

// toAssignmentResponse maps an assignment aggregate to its API view.
func toAssignmentResponse(aggregate *assignment.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          aggregate.ID().String(),
		OrderID:     aggregate.OrderID().String(),
		Provider:    aggregate.Provider().String(),
		Status:      aggregate.Status().String(),
		ExternalID:  aggregate.ExternalID(),
		RequestedAt: aggregate.RequestedAt(),
		AcceptedAt:  aggregate.AcceptedAt(),
		PickedUpAt:  aggregate.PickedUpAt(),
		DeliveredAt: aggregate.DeliveredAt(),
	}

	if driverID := aggregate.DriverID(); driverID != nil {
		id := driverID.String()
		response.DriverID = &id
	}

	return response
}

// badRequest answers 400 with the uniform error body.
func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps application errors to HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, assignment.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, commands.ErrOrderAlreadyAssigned),
		errors.Is(err, assignment.ErrInvalidTransition),
		errors.Is(err, assignment.ErrProofAlreadyAttached),
		errors.Is(err, driver.ErrDriverIsNotAvailable),
		errors.Is(err, errs.ErrVersionIsInvalid):
		status = http.StatusConflict
	case errors.Is(err, ports.ErrProviderUnavailable),
		errors.Is(err, services.ErrNoDriverAvailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status = http.StatusBadRequest
	}

	return ctx.JSON(status, Error{
		Code:    status,
		Message: err.Error(),
	})
}
