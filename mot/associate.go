package mot

import (
	"sort"

	"github.com/arthurkushman/go-hungarian"
)

// MatchingAlgorithm selects the algorithm for matching detections to tracks.
type MatchingAlgorithm uint16

const (
	// MatchingGreedy accepts candidate pairs in descending IoU order,
	// consuming each track and detection at most once. O(n·m·log(n·m)),
	// not globally optimal.
	MatchingGreedy MatchingAlgorithm = iota
	// MatchingHungarian uses the Hungarian algorithm (Kuhn-Munkres) for
	// optimal assignment.
	MatchingHungarian
)

// Match is an accepted (track, detection) pairing.
type Match struct {
	TrackIdx     int
	DetectionIdx int
	IoU          float64
}

// Association is a partition of tracks and detections into matched
// pairs and unmatched leftovers on either side.
type Association struct {
	Matches             []Match
	UnmatchedTracks     []int
	UnmatchedDetections []int
}

// Associator computes a detection-to-track cost matrix from geometric
// overlap and produces a matching. Pairs of different object classes
// never match.
type Associator struct {
	iouThreshold float64
	algorithm    MatchingAlgorithm
}

// NewAssociator creates an Associator with the given IoU acceptance
// threshold and matching algorithm.
func NewAssociator(iouThreshold float64, algorithm MatchingAlgorithm) *Associator {
	return &Associator{
		iouThreshold: iouThreshold,
		algorithm:    algorithm,
	}
}

// Associate matches the frame's detections against the given tracks
// (whose boxes must already be advanced by predict).
func (a *Associator) Associate(tracks []*Track, detections []Detection) Association {
	if len(tracks) == 0 || len(detections) == 0 {
		return Association{
			UnmatchedTracks:     indexRange(len(tracks)),
			UnmatchedDetections: indexRange(len(detections)),
		}
	}

	iouMatrix := a.costMatrix(tracks, detections)

	var matches []Match
	switch a.algorithm {
	case MatchingHungarian:
		matches = a.matchHungarian(iouMatrix)
	default:
		matches = a.matchGreedy(iouMatrix)
	}

	matchedTracks := make(map[int]struct{}, len(matches))
	matchedDetections := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		matchedTracks[m.TrackIdx] = struct{}{}
		matchedDetections[m.DetectionIdx] = struct{}{}
	}

	assoc := Association{Matches: matches}
	for i := range tracks {
		if _, ok := matchedTracks[i]; !ok {
			assoc.UnmatchedTracks = append(assoc.UnmatchedTracks, i)
		}
	}
	for j := range detections {
		if _, ok := matchedDetections[j]; !ok {
			assoc.UnmatchedDetections = append(assoc.UnmatchedDetections, j)
		}
	}
	return assoc
}

// costMatrix computes IoU for every (track, detection) pair. Pairs with
// different class IDs get zero cost so they can never be accepted.
func (a *Associator) costMatrix(tracks []*Track, detections []Detection) [][]float64 {
	iouMatrix := make([][]float64, len(tracks))
	for i, track := range tracks {
		row := make([]float64, len(detections))
		for j, det := range detections {
			if track.classID != det.ClassID {
				continue
			}
			row[j] = IoU(track.bbox, det.BBox)
		}
		iouMatrix[i] = row
	}
	return iouMatrix
}

// matchGreedy accepts candidate pairs from a max-heap in descending IoU
// order; a pair is accepted only if neither side was consumed by a
// higher-IoU pair. Ties break on lower track index, then lower detection
// index (see pairHeap.Less). Zero-overlap pairs are never candidates.
func (a *Associator) matchGreedy(iouMatrix [][]float64) []Match {
	pq := make(pairHeap, 0, len(iouMatrix))
	for i, row := range iouMatrix {
		for j, iouVal := range row {
			if iouVal > 0 && iouVal >= a.iouThreshold {
				pq.Push(candidatePair{trackIdx: i, detectionIdx: j, iou: iouVal})
			}
		}
	}

	// Prevent double assignment on either side
	consumedTracks := make(map[int]struct{})
	consumedDetections := make(map[int]struct{})

	matches := make([]Match, 0, len(iouMatrix))
	for pq.Len() > 0 {
		pair := pq.Pop()
		if _, ok := consumedTracks[pair.trackIdx]; ok {
			continue
		}
		if _, ok := consumedDetections[pair.detectionIdx]; ok {
			continue
		}
		consumedTracks[pair.trackIdx] = struct{}{}
		consumedDetections[pair.detectionIdx] = struct{}{}
		matches = append(matches, Match{
			TrackIdx:     pair.trackIdx,
			DetectionIdx: pair.detectionIdx,
			IoU:          pair.iou,
		})
	}
	return matches
}

// matchHungarian solves the assignment exactly, then filters out pairs
// below the IoU threshold and the zero-cost padding introduced to make
// the matrix square.
func (a *Associator) matchHungarian(iouMatrix [][]float64) []Match {
	numTracks := len(iouMatrix)
	numDetections := len(iouMatrix[0])

	paddedMatrix := iouMatrix
	if numTracks != numDetections {
		// Rectangular matrix - pad to make it square
		paddedSize := numTracks
		if numDetections > paddedSize {
			paddedSize = numDetections
		}
		paddedMatrix = make([][]float64, paddedSize)
		for i := 0; i < paddedSize; i++ {
			paddedMatrix[i] = make([]float64, paddedSize)
		}
		for i := 0; i < numTracks; i++ {
			copy(paddedMatrix[i], iouMatrix[i])
		}
	}

	assignments := hungarian.SolveMax(paddedMatrix)
	matches := make([]Match, 0, numTracks)
	for trackIdx, rowMap := range assignments {
		for detectionIdx := range rowMap {
			if trackIdx >= numTracks || detectionIdx >= numDetections {
				continue
			}
			iouVal := iouMatrix[trackIdx][detectionIdx]
			if iouVal > 0 && iouVal >= a.iouThreshold {
				matches = append(matches, Match{
					TrackIdx:     trackIdx,
					DetectionIdx: detectionIdx,
					IoU:          iouVal,
				})
			}
			break
		}
	}
	// Map iteration order is random; keep the result stable
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].TrackIdx < matches[j].TrackIdx
	})
	return matches
}

func indexRange(n int) []int {
	if n == 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
