// Package stuart integrates the Stuart courier network as a delivery
// provider. The client wraps Stuart's v2 REST API; the adapter translates
// between Stuart's job model and assignment semantics.
package stuart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	// SandboxBaseURL is the Stuart sandbox environment endpoint.
	SandboxBaseURL = "https://api.sandbox.stuart.com"

	// ProductionBaseURL is the Stuart production environment endpoint.
	ProductionBaseURL = "https://api.stuart.com"

	defaultTimeout = 10 * time.Second
)

// Client is a thin HTTP client for the Stuart v2 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Stuart API client for the given environment.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// jobPayload is the request body for job creation.
type jobPayload struct {
	Job jobBody `json:"job"`
}

type jobBody struct {
	PickupAt string        `json:"pickup_at"`
	Pickups  []pickupStop  `json:"pickups"`
	Dropoffs []dropoffStop `json:"dropoffs"`
}

type pickupStop struct {
	Address string      `json:"address"`
	Comment string      `json:"comment,omitempty"`
	Contact stopContact `json:"contact"`
}

type dropoffStop struct {
	Address         string      `json:"address"`
	PackageType     string      `json:"package_type"`
	ClientReference string      `json:"client_reference,omitempty"`
	Contact         stopContact `json:"contact"`
}

type stopContact struct {
	Firstname string `json:"firstname,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// jobResponse is Stuart's view of a job. Only the fields the adapter consumes
// are mapped.
type jobResponse struct {
	ID         int64             `json:"id"`
	Status     string            `json:"status"`
	Deliveries []deliveryDetails `json:"deliveries"`
	Driver     *driverDetails    `json:"driver"`
}

type deliveryDetails struct {
	Status                     string `json:"status"`
	TrackingURL                string `json:"tracking_url"`
	PackageDeliveredPictureURL string `json:"package_delivered_picture_url"`
	SignatureURL               string `json:"signature_url"`
	Comment                    string `json:"comment"`
}

type driverDetails struct {
	DisplayName string   `json:"display_name"`
	Firstname   string   `json:"firstname"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type etaResponse struct {
	ETA int64 `json:"eta"`
}

type cancelPayload struct {
	ReasonKey string `json:"reason_key"`
	Comment   string `json:"comment,omitempty"`
}

// apiError is a non-2xx answer that is neither a transient failure nor a
// missing resource.
type apiError struct {
	status int
	method string
	path   string
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("stuart: %s %s answered %d: %s", e.method, e.path, e.status, e.body)
}

// CreateJob registers a new delivery job and returns Stuart's view of it.
func (c *Client) CreateJob(ctx context.Context, payload jobPayload) (jobResponse, error) {
	var job jobResponse
	err := c.do(ctx, http.MethodPost, "/v2/jobs", payload, &job)
	return job, err
}

// GetJob fetches the current state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (jobResponse, error) {
	var job jobResponse
	err := c.do(ctx, http.MethodGet, "/v2/jobs/"+jobID, nil, &job)
	return job, err
}

// GetETA fetches the routed estimate in seconds for one leg of a job.
func (c *Client) GetETA(ctx context.Context, jobID string, kind ports.ETAKind) (time.Duration, error) {
	path := "/v2/jobs/" + jobID + "/eta_to_pickup"
	if kind == ports.ETAToDropoff {
		path = "/v2/jobs/" + jobID + "/eta_to_dropoff"
	}

	var eta etaResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &eta); err != nil {
		return 0, err
	}

	return time.Duration(eta.ETA) * time.Second, nil
}

// CancelJob cancels a job. Stuart answers 409 when the job is already
// terminal; the caller decides whether that matters.
func (c *Client) CancelJob(ctx context.Context, jobID, reasonKey string) error {
	payload := cancelPayload{
		ReasonKey: reasonKey,
		Comment:   "cancelled by dispatch",
	}
	return c.do(ctx, http.MethodPost, "/v2/jobs/"+jobID+"/cancel", payload, nil)
}

// do executes one API call. Transport failures and 5xx answers map to
// ErrProviderUnavailable; 404 maps to ErrObjectNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s %s answered %d",
			ports.ErrProviderUnavailable, method, path, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errs.NewObjectNotFoundError("stuart job", path)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &apiError{status: resp.StatusCode, method: method, path: path, body: string(detail)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("stuart: decoding %s %s response: %w", method, path, err)
	}

	return nil
}
