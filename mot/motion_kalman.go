package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// KalmanModel is the full-estimator motion model. It wraps an 8-D Kalman
// filter over [cx, cy, w, h] and their velocities, propagating a full
// covariance matrix on every predict step.
type KalmanModel struct {
	filter  *kalman_filter.KalmanBBox
	current Rectangle
}

// NewKalmanModel creates a KalmanModel initialized at bbox with zero
// velocity and the given time step.
func NewKalmanModel(bbox Rectangle, dt float64) *KalmanModel {
	center := bbox.Center()

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, bbox.Width, bbox.Height),
	)

	return &KalmanModel{
		filter:  kf,
		current: bbox,
	}
}

// Predict executes the filter's prediction step and returns the predicted
// bounding box.
func (m *KalmanModel) Predict() Rectangle {
	m.filter.Predict()
	cx, cy, w, h := m.filter.GetState()
	m.current = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
	return m.current
}

// Update executes the filter's correction step against the measured box
// and returns the smoothed state.
func (m *KalmanModel) Update(measurement Rectangle) (Rectangle, error) {
	center := measurement.Center()
	err := m.filter.Update(center.X, center.Y, measurement.Width, measurement.Height)
	if err != nil {
		return m.current, errors.Wrap(err, "Can't update motion model")
	}
	cx, cy, w, h := m.filter.GetState()
	m.current = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
	return m.current, nil
}

// Current returns the current state estimate as a bounding box.
func (m *KalmanModel) Current() Rectangle {
	return m.current
}

// Velocity returns the filter's center velocity estimate.
func (m *KalmanModel) Velocity() (float64, float64) {
	vx, vy, _, _ := m.filter.GetVelocity()
	return vx, vy
}

// MahalanobisDistance returns the Mahalanobis distance from the current
// state to a measured box, in filter units.
func (m *KalmanModel) MahalanobisDistance(measurement Rectangle) (float64, error) {
	center := measurement.Center()
	return m.filter.MahalanobisDistance(center.X, center.Y, measurement.Width, measurement.Height)
}
