package services

import (
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// DefaultAverageSpeedMPS is the assumed courier travel speed in meters per
// second when estimating arrival times, roughly 25 km/h of urban riding.
const DefaultAverageSpeedMPS = 7.0

// ArrivalEstimator is a domain service that estimates travel time between two
// points using great-circle distance at an assumed average speed. It is a
// deliberately rough heuristic for internal drivers; external providers return
// their own routed ETAs, which always take precedence.
type ArrivalEstimator struct {
	averageSpeedMPS float64
}

// NewArrivalEstimator creates an estimator with the given average speed in
// meters per second. Non-positive values are invalid.
func NewArrivalEstimator(averageSpeedMPS float64) (ArrivalEstimator, error) {
	if averageSpeedMPS <= 0 {
		return ArrivalEstimator{}, errs.NewValueIsRequiredError("average speed")
	}
	return ArrivalEstimator{averageSpeedMPS: averageSpeedMPS}, nil
}

// Estimate returns the expected travel time from the current position to the
// target, rounded up to a whole second so an ETA of "0s away" is only ever
// reported at the target itself.
func (e ArrivalEstimator) Estimate(from, to kernel.GeoPoint) (time.Duration, error) {
	meters, err := from.DistanceMeters(to)
	if err != nil {
		return 0, err
	}

	seconds := math.Ceil(meters / e.averageSpeedMPS)
	return time.Duration(seconds) * time.Second, nil
}
