package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArrivalEstimator(t *testing.T) {
	t.Run("positive_speed", func(t *testing.T) {
		_, err := services.NewArrivalEstimator(services.DefaultAverageSpeedMPS)

		require.NoError(t, err)
	})

	t.Run("non_positive_speed_fails", func(t *testing.T) {
		_, err := services.NewArrivalEstimator(0)
		require.Error(t, err)

		_, err = services.NewArrivalEstimator(-1)
		require.Error(t, err)
	})
}

func TestArrivalEstimator_Estimate(t *testing.T) {
	estimator, err := services.NewArrivalEstimator(10) // 10 m/s keeps the math round
	require.NoError(t, err)

	t.Run("scales_with_distance", func(t *testing.T) {
		from, err := kernel.NewGeoPoint(51.5074, -0.1278)
		require.NoError(t, err)
		// ~1.11 km due north (0.01 degrees of latitude).
		to, err := kernel.NewGeoPoint(51.5174, -0.1278)
		require.NoError(t, err)

		eta, err := estimator.Estimate(from, to)

		require.NoError(t, err)
		assert.InDelta(t, (111 * time.Second).Seconds(), eta.Seconds(), 2)
	})

	t.Run("zero_distance_zero_eta", func(t *testing.T) {
		point, err := kernel.NewGeoPoint(51.5074, -0.1278)
		require.NoError(t, err)

		eta, err := estimator.Estimate(point, point)

		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), eta)
	})

	t.Run("unconstructed_point_fails", func(t *testing.T) {
		point, err := kernel.NewGeoPoint(51.5074, -0.1278)
		require.NoError(t, err)
		var zero kernel.GeoPoint

		_, err = estimator.Estimate(point, zero)

		require.Error(t, err)
	})
}
