package mot

import (
	"github.com/pkg/errors"
)

// TrackerConfig holds configuration parameters for the tracker.
// MaxAge, MinHits and IoUThreshold may be changed at runtime via
// Tracker.SetConfig; Motion, DT and HistoryLen are fixed at
// construction because live tracks already carry their estimators.
type TrackerConfig struct {
	// Maximum number of frames a track survives without a match
	MaxAge int
	// Matches needed before a tentative track is confirmed
	MinHits int
	// Minimum IoU for a (track, detection) pair to be a match candidate
	IoUThreshold float64
	// Capacity of each track's bounding box history
	HistoryLen int
	// Algorithm used to match detections to tracks
	Matching MatchingAlgorithm
	// Motion estimator used for new tracks
	Motion MotionModelType
	// Time step between frames, in whatever unit the motion model should
	// express velocity (1.0 means velocity is per-frame)
	DT float64
}

// DefaultTrackerConfig returns the default configuration: greedy IoU
// matching at 0.3, Kalman motion, confirmation after 3 hits, deletion
// after 30 missed frames.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxAge:       30,
		MinHits:      3,
		IoUThreshold: 0.3,
		HistoryLen:   30,
		Matching:     MatchingGreedy,
		Motion:       MotionKalman,
		DT:           1.0,
	}
}

// Validate checks the configuration bounds.
func (c TrackerConfig) Validate() error {
	if c.MaxAge <= 0 {
		return errors.Errorf("MaxAge must be positive, got %d", c.MaxAge)
	}
	if c.MinHits < 1 {
		return errors.Errorf("MinHits must be at least 1, got %d", c.MinHits)
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Errorf("IoUThreshold must be in [0, 1], got %f", c.IoUThreshold)
	}
	if c.HistoryLen <= 0 {
		return errors.Errorf("HistoryLen must be positive, got %d", c.HistoryLen)
	}
	if c.DT <= 0 {
		return errors.Errorf("DT must be positive, got %f", c.DT)
	}
	return nil
}

// ConfigPatch is a partial configuration update. Nil fields keep their
// current value. Changes apply to subsequent Update calls only.
type ConfigPatch struct {
	MaxAge       *int
	MinHits      *int
	IoUThreshold *float64
	Matching     *MatchingAlgorithm
}

// apply merges the patch into a copy of cfg.
func (p ConfigPatch) apply(cfg TrackerConfig) TrackerConfig {
	if p.MaxAge != nil {
		cfg.MaxAge = *p.MaxAge
	}
	if p.MinHits != nil {
		cfg.MinHits = *p.MinHits
	}
	if p.IoUThreshold != nil {
		cfg.IoUThreshold = *p.IoUThreshold
	}
	if p.Matching != nil {
		cfg.Matching = *p.Matching
	}
	return cfg
}
