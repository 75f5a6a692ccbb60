package mot

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Velocity is a per-frame velocity estimate of a box center.
type Velocity struct {
	VX float64
	VY float64
}

// TrackedObject is the caller-facing projection of a confirmed track.
type TrackedObject struct {
	ID         int64
	Class      string
	ClassID    int
	BBox       Rectangle
	Confidence float64
	Age        int
	Hits       int
	Velocity   Velocity
}

// Statistics is a point-in-time summary of the tracker's live set.
// Dropped counts invalid detections discarded since construction or the
// last Reset.
type Statistics struct {
	Total     int
	Confirmed int
	Tentative int
	Dropped   int
	AvgAge    float64
	AvgHits   float64
}

// Tracker maintains stable identities for objects across frames. It is
// not safe for concurrent use: a single Tracker must never be called
// from more than one goroutine at a time, but independent Tracker
// instances share no state and may run in parallel.
type Tracker struct {
	cfg     TrackerConfig
	session uuid.UUID
	log     zerolog.Logger
	assoc   *Associator
	tracks  []*Track
	nextID  int64
	dropped int
}

// TrackerOption customizes a Tracker at construction.
type TrackerOption func(*Tracker)

// WithLogger sets the logger used for dropped-detection warnings and
// frame diagnostics. Default is a no-op logger.
func WithLogger(logger zerolog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = logger
	}
}

// NewTracker creates a Tracker with the given configuration.
func NewTracker(cfg TrackerConfig, opts ...TrackerOption) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tracker configuration")
	}
	t := &Tracker{
		cfg:     cfg,
		session: uuid.New(),
		log:     zerolog.Nop(),
		assoc:   NewAssociator(cfg.IoUThreshold, cfg.Matching),
		nextID:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("tracker", t.session.String()).Logger()
	return t, nil
}

// Update runs one tracking cycle over the frame's detections and
// returns the confirmed tracks as of this frame. Steps, in fixed order:
// predict every live track, associate, update matched tracks, mark
// unmatched tracks missed, spawn tentative tracks for unmatched
// detections, prune expired tracks, emit the snapshot.
func (t *Tracker) Update(detections []Detection) ([]TrackedObject, error) {
	detections = t.dropInvalid(detections)

	for _, track := range t.tracks {
		track.predict()
	}

	assoc := t.assoc.Associate(t.tracks, detections)

	for _, m := range assoc.Matches {
		track := t.tracks[m.TrackIdx]
		if err := track.update(detections[m.DetectionIdx], t.cfg.MinHits); err != nil {
			return nil, errors.Wrapf(err, "can't update track %d", track.id)
		}
	}

	for _, trackIdx := range assoc.UnmatchedTracks {
		t.tracks[trackIdx].markMissed()
	}

	for _, detIdx := range assoc.UnmatchedDetections {
		t.spawn(detections[detIdx])
	}

	t.prune()

	return t.snapshot(), nil
}

// dropInvalid filters out detections that cannot take part in
// association, logging each one.
func (t *Tracker) dropInvalid(detections []Detection) []Detection {
	valid := detections[:0:0]
	for i, det := range detections {
		if !det.Valid() {
			t.dropped++
			t.log.Warn().
				Int("index", i).
				Str("class", det.Class).
				Float64("width", det.BBox.Width).
				Float64("height", det.BBox.Height).
				Msg("dropping invalid detection")
			continue
		}
		valid = append(valid, det)
	}
	return valid
}

// spawn creates a tentative track with the next unused ID.
func (t *Tracker) spawn(det Detection) {
	track := newTrack(t.nextID, det, t.cfg.Motion, t.cfg.DT, t.cfg.HistoryLen)
	t.nextID++
	t.tracks = append(t.tracks, track)
	t.log.Debug().Int64("id", track.id).Str("class", track.class).Msg("track created")
}

// prune removes every track that has been unmatched for longer than
// MaxAge frames. Deleted tracks are removed from the live set, not
// merely flagged.
func (t *Tracker) prune() {
	kept := t.tracks[:0]
	for _, track := range t.tracks {
		if track.shouldDelete(t.cfg.MaxAge) {
			track.state = StateDeleted
			t.log.Debug().Int64("id", track.id).Int("age", track.age).Msg("track deleted")
			continue
		}
		kept = append(kept, track)
	}
	for i := len(kept); i < len(t.tracks); i++ {
		t.tracks[i] = nil
	}
	t.tracks = kept
}

// snapshot projects the confirmed tracks, in creation order.
func (t *Tracker) snapshot() []TrackedObject {
	out := make([]TrackedObject, 0, len(t.tracks))
	for _, track := range t.tracks {
		if track.state != StateConfirmed {
			continue
		}
		out = append(out, project(track))
	}
	return out
}

func project(track *Track) TrackedObject {
	vx, vy := track.Velocity()
	return TrackedObject{
		ID:         track.id,
		Class:      track.class,
		ClassID:    track.classID,
		BBox:       track.bbox,
		Confidence: track.confidence,
		Age:        track.age,
		Hits:       track.hits,
		Velocity:   Velocity{VX: vx, VY: vy},
	}
}

// Reset clears all tracks and restarts the identity space. The tracker
// may be reused for an independent session afterwards.
func (t *Tracker) Reset() {
	t.tracks = nil
	t.nextID = 1
	t.dropped = 0
	t.log.Debug().Msg("tracker reset")
}

// GetTrack returns the projection of a live track by ID. The second
// return value is false for unknown or deleted IDs.
func (t *Tracker) GetTrack(id int64) (TrackedObject, bool) {
	for _, track := range t.tracks {
		if track.id == id {
			return project(track), true
		}
	}
	return TrackedObject{}, false
}

// SetConfig merges a partial configuration update. The merged result is
// validated as a whole; on error the current configuration is kept.
// Changes take effect from the next Update call.
func (t *Tracker) SetConfig(patch ConfigPatch) error {
	merged := patch.apply(t.cfg)
	if err := merged.Validate(); err != nil {
		return errors.Wrap(err, "invalid tracker configuration")
	}
	t.cfg = merged
	t.assoc = NewAssociator(merged.IoUThreshold, merged.Matching)
	return nil
}

// Config returns the current configuration.
func (t *Tracker) Config() TrackerConfig {
	return t.cfg
}

// Statistics computes counts and averages over the live set. Nothing is
// cached; every call walks the current tracks.
func (t *Tracker) Statistics() Statistics {
	stats := Statistics{
		Total:   len(t.tracks),
		Dropped: t.dropped,
	}
	if len(t.tracks) == 0 {
		return stats
	}
	ages := make([]float64, len(t.tracks))
	hits := make([]float64, len(t.tracks))
	for i, track := range t.tracks {
		switch track.state {
		case StateConfirmed:
			stats.Confirmed++
		case StateTentative:
			stats.Tentative++
		}
		ages[i] = float64(track.age)
		hits[i] = float64(track.hits)
	}
	stats.AvgAge = stat.Mean(ages, nil)
	stats.AvgHits = stat.Mean(hits, nil)
	return stats
}
