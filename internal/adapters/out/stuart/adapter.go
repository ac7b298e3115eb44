package stuart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	defaultPackageType = "medium"
	cancelReasonKey    = "customer_cancellation"
)

// Adapter implements ProviderAdapter on top of the Stuart API client.
type Adapter struct {
	client *Client
}

// NewAdapter creates a Stuart provider adapter.
func NewAdapter(client *Client) (*Adapter, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	return &Adapter{client: client}, nil
}

// Provider identifies this adapter as serving the Stuart courier network.
func (a *Adapter) Provider() assignment.Provider {
	return assignment.Stuart
}

// CreateJob registers the delivery with Stuart and returns the remote job id.
func (a *Adapter) CreateJob(ctx context.Context, request ports.JobRequest) (string, error) {
	pickupAt := time.Now().UTC()
	if request.RequestedPickup != nil {
		pickupAt = request.RequestedPickup.UTC()
	}

	payload := jobPayload{
		Job: jobBody{
			PickupAt: pickupAt.Format(time.RFC3339),
			Pickups: []pickupStop{{
				Address: request.PickupAddress,
				Comment: request.PackageNote,
				Contact: stopContact{Firstname: request.PickupContact},
			}},
			Dropoffs: []dropoffStop{{
				Address:         request.DropoffAddress,
				PackageType:     defaultPackageType,
				ClientReference: request.OrderID.String(),
				Contact:         stopContact{Firstname: request.DropoffContact},
			}},
		},
	}

	job, err := a.client.CreateJob(ctx, payload)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(job.ID, 10), nil
}

// GetJob fetches Stuart's current view of the job and translates it to an
// assignment-level snapshot.
func (a *Adapter) GetJob(ctx context.Context, externalID string) (ports.JobSnapshot, error) {
	job, err := a.client.GetJob(ctx, externalID)
	if err != nil {
		return ports.JobSnapshot{}, err
	}

	return toSnapshot(externalID, job)
}

// GetETA fetches Stuart's routed estimate for the given leg.
func (a *Adapter) GetETA(ctx context.Context, externalID string, kind ports.ETAKind) (time.Duration, error) {
	return a.client.GetETA(ctx, externalID, kind)
}

// CancelJob cancels the remote job. A job Stuart no longer knows or already
// closed counts as cancelled.
func (a *Adapter) CancelJob(ctx context.Context, externalID string, reason string) error {
	reasonKey := cancelReasonKey
	if reason != "" {
		reasonKey = reason
	}

	err := a.client.CancelJob(ctx, externalID, reasonKey)
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.status == 409 {
		return nil
	}
	return err
}

// toSnapshot translates a Stuart job into the provider-neutral view.
func toSnapshot(externalID string, job jobResponse) (ports.JobSnapshot, error) {
	var delivery deliveryDetails
	if len(job.Deliveries) > 0 {
		delivery = job.Deliveries[0]
	}

	status, err := mapStatus(job.Status, delivery.Status)
	if err != nil {
		return ports.JobSnapshot{}, err
	}

	snapshot := ports.JobSnapshot{
		ExternalID: externalID,
		Status:     status,
		UpdatedAt:  time.Now().UTC(),
	}

	if job.Driver != nil {
		snapshot.CourierName = job.Driver.DisplayName
		if snapshot.CourierName == "" {
			snapshot.CourierName = job.Driver.Firstname
		}
		if job.Driver.Latitude != nil && job.Driver.Longitude != nil {
			position, pointErr := kernel.NewGeoPoint(*job.Driver.Latitude, *job.Driver.Longitude)
			if pointErr != nil {
				return ports.JobSnapshot{}, pointErr
			}
			snapshot.CourierPosition = &position
		}
	}

	if delivery.PackageDeliveredPictureURL != "" || delivery.SignatureURL != "" {
		proof, proofErr := assignment.NewProof(
			delivery.PackageDeliveredPictureURL, delivery.SignatureURL, delivery.Comment)
		if proofErr != nil {
			return ports.JobSnapshot{}, proofErr
		}
		snapshot.Proof = &proof
	}

	return snapshot, nil
}

// mapStatus translates Stuart job and delivery statuses into assignment
// statuses. The delivery status is more granular and wins when present.
func mapStatus(jobStatus, deliveryStatus string) (assignment.Status, error) {
	switch deliveryStatus {
	case "picking", "almost_picking", "waiting_at_pickup":
		return assignment.Accepted, nil
	case "delivering", "almost_delivering", "waiting_at_dropoff":
		return assignment.PickedUp, nil
	case "delivered":
		return assignment.Delivered, nil
	case "cancelled":
		return assignment.Cancelled, nil
	}

	switch jobStatus {
	case "new", "pending", "searching", "scheduled":
		return assignment.Pending, nil
	case "in_progress":
		return assignment.Accepted, nil
	case "finished":
		return assignment.Delivered, nil
	case "canceled":
		return assignment.Cancelled, nil
	case "expired":
		return assignment.Failed, nil
	}

	return assignment.Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("unrecognized stuart status %q/%q", jobStatus, deliveryStatus))
}
