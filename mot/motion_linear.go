package mot

// LinearModel is the finite-difference motion model. Velocity is the
// delta between the last two observed centers; prediction linearly
// extrapolates the position by that velocity and leaves the size
// unchanged. Update replaces position and size with the measurement.
type LinearModel struct {
	current    Rectangle
	lastCenter Point
	vx, vy     float64
	dt         float64
}

// NewLinearModel creates a LinearModel initialized at bbox with zero
// velocity and the given time step.
func NewLinearModel(bbox Rectangle, dt float64) *LinearModel {
	return &LinearModel{
		current:    bbox,
		lastCenter: bbox.Center(),
		dt:         dt,
	}
}

// Predict extrapolates the box center by the last observed velocity.
func (m *LinearModel) Predict() Rectangle {
	m.current.X += m.vx * m.dt
	m.current.Y += m.vy * m.dt
	return m.current
}

// Update replaces position and size with the measurement and recomputes
// velocity from the center delta. Never fails.
func (m *LinearModel) Update(measurement Rectangle) (Rectangle, error) {
	center := measurement.Center()
	m.vx = (center.X - m.lastCenter.X) / m.dt
	m.vy = (center.Y - m.lastCenter.Y) / m.dt
	m.lastCenter = center
	m.current = measurement
	return m.current, nil
}

// Current returns the current state estimate as a bounding box.
func (m *LinearModel) Current() Rectangle {
	return m.current
}

// Velocity returns the last finite-difference velocity estimate.
func (m *LinearModel) Velocity() (float64, float64) {
	return m.vx, m.vy
}
