package mot

import "math"

// Detection is a single per-frame observation produced by an external
// detector. It carries no identity; identity is assigned by the Tracker.
type Detection struct {
	Class      string
	ClassID    int
	Confidence float64
	BBox       Rectangle
}

func NewDetection(class string, classID int, confidence float64, bbox Rectangle) Detection {
	return Detection{
		Class:      class,
		ClassID:    classID,
		Confidence: confidence,
		BBox:       bbox,
	}
}

// Valid reports whether the detection can take part in association.
// A detection with a negative width/height, non-finite coordinates or a
// non-finite confidence is rejected; the Tracker drops such detections
// from the frame instead of failing the whole update call.
func (d Detection) Valid() bool {
	if !d.BBox.isFinite() {
		return false
	}
	if d.BBox.Width < 0 || d.BBox.Height < 0 {
		return false
	}
	if math.IsNaN(d.Confidence) || math.IsInf(d.Confidence, 0) {
		return false
	}
	return true
}
