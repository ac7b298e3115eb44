package http

import (
	"time"
)

// Error is the uniform error body for all endpoints.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AssignOrderRequest creates a delivery assignment for an order. Provider is
// optional; empty means the configured dispatch policy decides.
type AssignOrderRequest struct {
	Provider string `json:"provider,omitempty"`
}

// DriverActionRequest identifies the driver performing a lifecycle action.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// CompleteDeliveryRequest records the handoff with proof of delivery.
type CompleteDeliveryRequest struct {
	DriverID     string `json:"driver_id"`
	PhotoURL     string `json:"photo_url,omitempty"`
	SignatureURL string `json:"signature_url,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// CancelAssignmentRequest cancels an assignment with an optional reason.
type CancelAssignmentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RecordPingRequest reports one courier position.
type RecordPingRequest struct {
	Latitude       float64           `json:"latitude"`
	Longitude      float64           `json:"longitude"`
	RecordedAt     time.Time         `json:"recorded_at"`
	AccuracyMeters float64           `json:"accuracy_meters,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// CourierWebhookRequest is the provider callback payload.
type CourierWebhookRequest struct {
	JobID      string        `json:"job_id"`
	Status     string        `json:"status"`
	Latitude   *float64      `json:"latitude,omitempty"`
	Longitude  *float64      `json:"longitude,omitempty"`
	Proof      *ProofPayload `json:"proof,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ProofPayload carries proof-of-delivery artifacts on webhooks and responses.
type ProofPayload struct {
	PhotoURL     string `json:"photo_url,omitempty"`
	SignatureURL string `json:"signature_url,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AssignmentResponse is the API view of an assignment.
type AssignmentResponse struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	Provider    string     `json:"provider"`
	Status      string     `json:"status"`
	DriverID    *string    `json:"driver_id,omitempty"`
	ExternalID  *string    `json:"external_id,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// LocationResponse is the last known courier position for an order. Position
// is null until the first ping arrives.
type LocationResponse struct {
	AssignmentID string           `json:"assignment_id"`
	Status       string           `json:"status"`
	Position     *PositionPayload `json:"position"`
}

// PositionPayload is one reported courier position.
type PositionPayload struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	RecordedAt     time.Time `json:"recorded_at"`
	AccuracyMeters float64   `json:"accuracy_meters"`
}

// ETAResponse is the estimated time of arrival for one delivery leg.
// ETASeconds is null while the courier has no known position.
type ETAResponse struct {
	AssignmentID string `json:"assignment_id"`
	Leg          string `json:"leg"`
	ETASeconds   *int64 `json:"eta_seconds"`
	Estimated    bool   `json:"estimated"`
}

// ProofOfDeliveryResponse is the proof state of an order's delivery.
type ProofOfDeliveryResponse struct {
	AssignmentID string        `json:"assignment_id"`
	Status       string        `json:"status"`
	DeliveredAt  *time.Time    `json:"delivered_at,omitempty"`
	Proof        *ProofPayload `json:"proof,omitempty"`
}
