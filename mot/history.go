package mot

// History is a fixed-capacity ring buffer of bounding boxes. When full,
// appending evicts the oldest entry. Capacity is set at construction and
// never changes.
type History struct {
	boxes []Rectangle
	head  int
	size  int
}

// NewHistory creates an empty history with the given capacity.
// Capacity must be positive.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{
		boxes: make([]Rectangle, capacity),
	}
}

// Push appends a box, evicting the oldest entry when full.
func (h *History) Push(box Rectangle) {
	tail := (h.head + h.size) % len(h.boxes)
	h.boxes[tail] = box
	if h.size < len(h.boxes) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.boxes)
	}
}

// Len returns the number of stored boxes.
func (h *History) Len() int {
	return h.size
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.boxes)
}

// At returns the i-th stored box, oldest first.
func (h *History) At(i int) Rectangle {
	return h.boxes[(h.head+i)%len(h.boxes)]
}

// Boxes returns a copy of the stored boxes, oldest first.
func (h *History) Boxes() []Rectangle {
	out := make([]Rectangle, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.At(i)
	}
	return out
}
