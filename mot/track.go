package mot

// TrackState is the lifecycle state of a track.
type TrackState uint16

const (
	// StateTentative is the initial state: the track exists but has not
	// accumulated enough matches to be emitted to callers.
	StateTentative TrackState = iota
	// StateConfirmed tracks are included in the Tracker's output.
	StateConfirmed
	// StateDeleted is terminal; the track is removed from the live set.
	StateDeleted
)

func (s TrackState) String() string {
	switch s {
	case StateTentative:
		return "tentative"
	case StateConfirmed:
		return "confirmed"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Track is a persistent identity for one physical object across frames.
// It is created, mutated and destroyed exclusively by its owning Tracker.
type Track struct {
	id         int64
	class      string
	classID    int
	confidence float64
	bbox       Rectangle
	state      TrackState

	// Lifecycle counters
	age             int
	hits            int
	hitStreak       int
	timeSinceUpdate int

	model   MotionModel
	history *History
}

// newTrack creates a track from an unmatched detection in tentative
// state with hits=1.
func newTrack(id int64, det Detection, kind MotionModelType, dt float64, historyLen int) *Track {
	tr := &Track{
		id:              id,
		class:           det.Class,
		classID:         det.ClassID,
		confidence:      det.Confidence,
		bbox:            det.BBox,
		state:           StateTentative,
		age:             1,
		hits:            1,
		hitStreak:       1,
		timeSinceUpdate: 0,
		model:           newMotionModel(kind, det.BBox, dt),
		history:         NewHistory(historyLen),
	}
	tr.history.Push(det.BBox)
	return tr
}

// predict advances the motion model by one frame. Called once per frame
// for every live track, before association.
func (t *Track) predict() Rectangle {
	t.bbox = t.model.Predict()
	t.age++
	t.timeSinceUpdate++
	return t.bbox
}

// update corrects the track from a matched detection and promotes it to
// confirmed once it has accumulated minHits matches.
func (t *Track) update(det Detection, minHits int) error {
	corrected, err := t.model.Update(det.BBox)
	if err != nil {
		return err
	}
	t.bbox = corrected
	t.confidence = det.Confidence
	t.hits++
	t.hitStreak++
	t.timeSinceUpdate = 0
	t.history.Push(det.BBox)
	if t.state == StateTentative && t.hits >= minHits {
		t.state = StateConfirmed
	}
	return nil
}

// markMissed records that the track was left unmatched after
// association. timeSinceUpdate was already advanced by predict.
func (t *Track) markMissed() {
	t.hitStreak = 0
}

// shouldDelete reports whether the track has been unmatched for longer
// than maxAge frames. The comparison is strict: a track missing for
// exactly maxAge frames is still alive.
func (t *Track) shouldDelete(maxAge int) bool {
	return t.timeSinceUpdate > maxAge
}

// ID returns the track's identifier, unique within its owning Tracker.
func (t *Track) ID() int64 {
	return t.id
}

// Class returns the track's object class name.
func (t *Track) Class() string {
	return t.class
}

// ClassID returns the track's numeric class identifier.
func (t *Track) ClassID() int {
	return t.classID
}

// Confidence returns the confidence of the last matched detection.
func (t *Track) Confidence() float64 {
	return t.confidence
}

// BBox returns the last known or predicted bounding box.
func (t *Track) BBox() Rectangle {
	return t.bbox
}

// State returns the track's lifecycle state.
func (t *Track) State() TrackState {
	return t.state
}

// Age returns the number of frames since creation.
func (t *Track) Age() int {
	return t.age
}

// Hits returns the total number of successful matches.
func (t *Track) Hits() int {
	return t.hits
}

// HitStreak returns the number of consecutive matches since the last miss.
func (t *Track) HitStreak() int {
	return t.hitStreak
}

// TimeSinceUpdate returns the number of frames since the last match.
func (t *Track) TimeSinceUpdate() int {
	return t.timeSinceUpdate
}

// Velocity returns the motion model's current velocity estimate.
func (t *Track) Velocity() (vx, vy float64) {
	return t.model.Velocity()
}

// History returns the track's bounded box history. Be careful: this is
// not a copy of the history, but a reference to it.
func (t *Track) History() *History {
	return t.history
}
