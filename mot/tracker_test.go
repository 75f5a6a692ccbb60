package mot

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testConfig() TrackerConfig {
	cfg := DefaultTrackerConfig()
	cfg.MaxAge = 5
	cfg.MinHits = 3
	cfg.IoUThreshold = 0.3
	cfg.Motion = MotionLinear
	return cfg
}

func personAt(x, y float64) Detection {
	return Detection{
		Class:      "person",
		ClassID:    0,
		Confidence: 0.9,
		BBox:       Rectangle{X: x, Y: y, Width: 50, Height: 50},
	}
}

func TestNewTrackerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultTrackerConfig()
	cfg.MaxAge = 0
	if _, err := NewTracker(cfg); err == nil {
		t.Error("Expected error for MaxAge=0")
	}

	cfg = DefaultTrackerConfig()
	cfg.IoUThreshold = 1.5
	if _, err := NewTracker(cfg); err == nil {
		t.Error("Expected error for IoUThreshold=1.5")
	}
}

func TestTrackerConfirmationThreshold(t *testing.T) {
	tracker, err := NewTracker(testConfig())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	// Frame 1: track is created tentative, output empty
	out, err := tracker.Update([]Detection{personAt(10, 10)})
	if err != nil {
		t.Fatalf("Frame 1 failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty output on frame 1, got %d objects", len(out))
	}

	// Frame 2: matched but still below MinHits
	out, err = tracker.Update([]Detection{personAt(12, 12)})
	if err != nil {
		t.Fatalf("Frame 2 failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty output on frame 2, got %d objects", len(out))
	}

	// Frame 3: third consecutive match confirms the track
	out, err = tracker.Update([]Detection{personAt(14, 14)})
	if err != nil {
		t.Fatalf("Frame 3 failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 object on frame 3, got %d", len(out))
	}
	if out[0].ID != 1 {
		t.Errorf("Expected id=1, got %d", out[0].ID)
	}
	if out[0].Hits != 3 {
		t.Errorf("Expected hits=3, got %d", out[0].Hits)
	}
	if out[0].Class != "person" {
		t.Errorf("Expected class person, got %s", out[0].Class)
	}
}

func TestTrackerDeletionTiming(t *testing.T) {
	tracker, err := NewTracker(testConfig())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	// Confirm a track
	for i := 0; i < 3; i++ {
		if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
			t.Fatalf("Confirmation frame %d failed: %v", i, err)
		}
	}

	// Frames 1..5 without detections: timeSinceUpdate reaches MaxAge,
	// strict comparison keeps the track alive and emitted
	for miss := 1; miss <= 5; miss++ {
		out, err := tracker.Update(nil)
		if err != nil {
			t.Fatalf("Miss frame %d failed: %v", miss, err)
		}
		if len(out) != 1 {
			t.Errorf("Expected track present at miss %d, got %d objects", miss, len(out))
		}
	}

	// Miss 6: timeSinceUpdate=6 > MaxAge=5, track is pruned
	out, err := tracker.Update(nil)
	if err != nil {
		t.Fatalf("Miss frame 6 failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected track deleted at miss 6, got %d objects", len(out))
	}
	if _, ok := tracker.GetTrack(1); ok {
		t.Error("Expected deleted track to be removed from the live set")
	}
}

func TestTrackerIDUniquenessAndNoReuse(t *testing.T) {
	cfg := testConfig()
	cfg.MinHits = 1
	tracker, err := NewTracker(cfg)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	seen := map[int64]bool{}
	record := func() {
		for id := int64(1); id < 100; id++ {
			if _, ok := tracker.GetTrack(id); ok {
				seen[id] = true
			}
		}
	}

	// Object A lives, dies, then a new object appears at the same place
	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}
	record()
	for i := 0; i < 7; i++ {
		if _, err := tracker.Update(nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := tracker.GetTrack(1); ok {
		t.Fatal("Expected track 1 to be deleted")
	}

	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}
	record()

	if !seen[1] || !seen[2] {
		t.Errorf("Expected ids 1 and 2 to have been assigned, got %v", seen)
	}
	if tr, ok := tracker.GetTrack(2); !ok || tr.ID != 2 {
		t.Errorf("Expected replacement object to get a fresh id 2")
	}
}

func TestTrackerNonMergeGuarantee(t *testing.T) {
	cfg := testConfig()
	cfg.MinHits = 1
	tracker, err := NewTracker(cfg)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	// Seed one track
	if _, err := tracker.Update([]Detection{personAt(0, 0)}); err != nil {
		t.Fatal(err)
	}

	// Two detections, both below IoU threshold against the track and
	// disjoint from each other: each must spawn its own track
	dets := []Detection{personAt(200, 200), personAt(400, 400)}
	if _, err := tracker.Update(dets); err != nil {
		t.Fatal(err)
	}

	stats := tracker.Statistics()
	if stats.Total != 3 {
		t.Errorf("Expected 3 live tracks (no merge), got %d", stats.Total)
	}
}

func TestTrackerDeterminism(t *testing.T) {
	frames := [][]Detection{
		{personAt(10, 10), personAt(100, 100)},
		{personAt(12, 12), personAt(102, 102), personAt(300, 300)},
		{personAt(14, 14), personAt(104, 104), personAt(302, 302)},
		{personAt(104, 106)},
		{personAt(16, 16), personAt(106, 108)},
	}

	run := func() [][]TrackedObject {
		tracker, err := NewTracker(testConfig())
		if err != nil {
			t.Fatalf("NewTracker failed: %v", err)
		}
		outputs := make([][]TrackedObject, 0, len(frames))
		for i, frame := range frames {
			out, err := tracker.Update(frame)
			if err != nil {
				t.Fatalf("Frame %d failed: %v", i, err)
			}
			outputs = append(outputs, out)
		}
		return outputs
	}

	first := run()
	second := run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Repeated runs diverged (-first +second):\n%s", diff)
	}
}

func TestTrackerGetTrack(t *testing.T) {
	cfg := testConfig()
	cfg.MinHits = 1
	tracker, err := NewTracker(cfg)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}

	got, ok := tracker.GetTrack(1)
	if !ok {
		t.Fatal("Expected track 1 to be found")
	}
	if got.ID != 1 || got.Class != "person" {
		t.Errorf("Unexpected projection: %+v", got)
	}

	if _, ok := tracker.GetTrack(42); ok {
		t.Error("Expected absent result for unknown id")
	}
}

func TestTrackerReset(t *testing.T) {
	tracker, err := NewTracker(testConfig())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := tracker.Update([]Detection{personAt(10, 10), personAt(200, 200)}); err != nil {
			t.Fatal(err)
		}
	}
	if tracker.Statistics().Total == 0 {
		t.Fatal("Expected live tracks before reset")
	}

	tracker.Reset()

	stats := tracker.Statistics()
	if stats.Total != 0 || stats.Dropped != 0 {
		t.Errorf("Expected empty tracker after reset, got %+v", stats)
	}

	// Identity space restarts at 1
	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}
	if _, ok := tracker.GetTrack(1); !ok {
		t.Error("Expected first post-reset track to get id 1")
	}
}

func TestTrackerSetConfig(t *testing.T) {
	tracker, err := NewTracker(testConfig())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	minHits := 1
	if err := tracker.SetConfig(ConfigPatch{MinHits: &minHits}); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if tracker.Config().MinHits != 1 {
		t.Errorf("Expected MinHits=1, got %d", tracker.Config().MinHits)
	}
	if tracker.Config().MaxAge != 5 {
		t.Errorf("Expected MaxAge untouched at 5, got %d", tracker.Config().MaxAge)
	}

	// Invalid patch keeps the current config
	badAge := -1
	if err := tracker.SetConfig(ConfigPatch{MaxAge: &badAge}); err == nil {
		t.Error("Expected error for negative MaxAge")
	}
	if tracker.Config().MaxAge != 5 {
		t.Errorf("Expected MaxAge still 5 after rejected patch, got %d", tracker.Config().MaxAge)
	}

	// New MinHits applies from the next update: second match confirms
	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}
	out, err := tracker.Update([]Detection{personAt(12, 12)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Errorf("Expected confirmation with MinHits=1 on first matched update, got %d objects", len(out))
	}
}

func TestTrackerDropsInvalidDetections(t *testing.T) {
	cfg := testConfig()
	cfg.MinHits = 1
	tracker, err := NewTracker(cfg)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	dets := []Detection{
		{Class: "person", Confidence: 0.9, BBox: Rectangle{X: math.NaN(), Y: 0, Width: 10, Height: 10}},
		{Class: "person", Confidence: 0.9, BBox: Rectangle{X: 0, Y: 0, Width: -5, Height: 10}},
		personAt(10, 10),
	}
	if _, err := tracker.Update(dets); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stats := tracker.Statistics()
	if stats.Dropped != 2 {
		t.Errorf("Expected 2 dropped detections, got %d", stats.Dropped)
	}
	if stats.Total != 1 {
		t.Errorf("Expected the valid detection to spawn 1 track, got %d", stats.Total)
	}
}

func TestTrackerStatistics(t *testing.T) {
	tracker, err := NewTracker(testConfig())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	// Three frames: first object confirmed, second appears on frame 3
	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.Update([]Detection{personAt(12, 12)}); err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.Update([]Detection{personAt(14, 14), personAt(300, 300)}); err != nil {
		t.Fatal(err)
	}

	stats := tracker.Statistics()
	if stats.Total != 2 {
		t.Fatalf("Expected 2 live tracks, got %d", stats.Total)
	}
	if stats.Confirmed != 1 || stats.Tentative != 1 {
		t.Errorf("Expected 1 confirmed + 1 tentative, got %d/%d", stats.Confirmed, stats.Tentative)
	}
	// Track 1: age 3, hits 3. Track 2: age 1, hits 1.
	if math.Abs(stats.AvgAge-2.0) > 1e-9 {
		t.Errorf("Expected AvgAge 2.0, got %f", stats.AvgAge)
	}
	if math.Abs(stats.AvgHits-2.0) > 1e-9 {
		t.Errorf("Expected AvgHits 2.0, got %f", stats.AvgHits)
	}
}

func TestTrackerEndToEndScenario(t *testing.T) {
	tracker, err := NewTracker(testConfig())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	// Frames 1-3: one person moving slightly; confirmed on frame 3
	positions := []Point{{X: 10, Y: 10}, {X: 13, Y: 11}, {X: 16, Y: 12}}
	var out []TrackedObject
	for i, p := range positions {
		out, err = tracker.Update([]Detection{personAt(p.X, p.Y)})
		if err != nil {
			t.Fatalf("Frame %d failed: %v", i+1, err)
		}
		if i < 2 && len(out) != 0 {
			t.Errorf("Expected empty output on frame %d, got %d", i+1, len(out))
		}
	}
	if len(out) != 1 || out[0].ID != 1 || out[0].Hits != 3 {
		t.Fatalf("Expected one confirmed object id=1 hits=3 on frame 3, got %+v", out)
	}

	// Frames 4-8: person gone; with MaxAge=5 the track coasts through
	// frame 8 and is pruned on frame 9
	for frame := 4; frame <= 8; frame++ {
		out, err = tracker.Update(nil)
		if err != nil {
			t.Fatalf("Frame %d failed: %v", frame, err)
		}
		if len(out) != 1 {
			t.Errorf("Expected coasting track on frame %d, got %d objects", frame, len(out))
		}
	}
	out, err = tracker.Update(nil)
	if err != nil {
		t.Fatalf("Frame 9 failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected track gone on frame 9, got %d objects", len(out))
	}
}

func TestTrackerVelocityInOutput(t *testing.T) {
	cfg := testConfig()
	cfg.MinHits = 2
	tracker, err := NewTracker(cfg)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	if _, err := tracker.Update([]Detection{personAt(10, 10)}); err != nil {
		t.Fatal(err)
	}
	out, err := tracker.Update([]Detection{personAt(20, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(out))
	}
	if out[0].Velocity.VX <= 0 {
		t.Errorf("Expected positive x velocity for rightward motion, got %f", out[0].Velocity.VX)
	}
}

func TestTrackerKalmanMotion(t *testing.T) {
	cfg := testConfig()
	cfg.Motion = MotionKalman
	tracker, err := NewTracker(cfg)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	var out []TrackedObject
	for i := 0; i < 5; i++ {
		out, err = tracker.Update([]Detection{personAt(float64(10 + 3*i), 10)})
		if err != nil {
			t.Fatalf("Frame %d failed: %v", i+1, err)
		}
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 confirmed object, got %d", len(out))
	}
	if out[0].ID != 1 {
		t.Errorf("Expected stable id 1 across the sequence, got %d", out[0].ID)
	}
}
