package mot

// MotionModelType selects the motion estimator used for new tracks.
type MotionModelType uint16

const (
	// MotionKalman is a full estimator: mean and covariance are propagated
	// through a constant-velocity transition model and corrected with a
	// Kalman gain. Preferred when detections are noisy.
	MotionKalman MotionModelType = iota
	// MotionLinear is a finite-difference estimator: velocity is the delta
	// of the last two observed centers and prediction is a linear
	// extrapolation. Cheaper, less robust to detector jitter.
	MotionLinear
)

// MotionModel estimates an object's bounding box one frame ahead and
// corrects the estimate when a real measurement arrives. Implementations
// assume constant velocity between observations and operate purely on
// finite numeric input; callers must reject NaN/negative sizes up front.
type MotionModel interface {
	// Predict advances the internal state by one time step and returns the
	// predicted bounding box.
	Predict() Rectangle
	// Update corrects the state from an observed bounding box and returns
	// the corrected box.
	Update(measurement Rectangle) (Rectangle, error)
	// Current returns the current (last predicted or corrected) box.
	Current() Rectangle
	// Velocity returns the current velocity estimate of the box center.
	Velocity() (vx, vy float64)
}

// newMotionModel builds the configured estimator initialized from bbox
// with zero velocity.
func newMotionModel(kind MotionModelType, bbox Rectangle, dt float64) MotionModel {
	switch kind {
	case MotionLinear:
		return NewLinearModel(bbox, dt)
	default:
		return NewKalmanModel(bbox, dt)
	}
}
