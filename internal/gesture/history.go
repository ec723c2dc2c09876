package gesture

// History holds the most recent samples of one hand, oldest first.
type History struct {
	samples  []HandSample
	capacity int
}

// NewHistory creates an empty history holding at most capacity samples.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		samples:  make([]HandSample, 0, capacity),
		capacity: capacity,
	}
}

// Update appends a sample, evicting the oldest one when full.
// A nil sample means tracking was lost and clears the history so a hand
// reappearing elsewhere does not produce a velocity spike.
func (h *History) Update(s *HandSample) {
	if s == nil {
		h.Reset()
		return
	}

	if len(h.samples) >= h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.capacity-1]
	}
	h.samples = append(h.samples, *s)
}

// Reset empties the history.
func (h *History) Reset() {
	h.samples = h.samples[:0]
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return h.capacity
}

// Full reports whether the history holds capacity samples.
func (h *History) Full() bool {
	return len(h.samples) == h.capacity
}

// Samples returns a copy of the stored samples, oldest first.
func (h *History) Samples() []HandSample {
	return append([]HandSample(nil), h.samples...)
}

// Last returns the newest sample.
func (h *History) Last() (HandSample, bool) {
	if len(h.samples) == 0 {
		return HandSample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Velocity returns the displacement between the two newest samples in pixels per frame.
// ok is false with fewer than two samples.
func (h *History) Velocity() (dx, dy float64, ok bool) {
	n := len(h.samples)
	if n < 2 {
		return 0, 0, false
	}
	last, prev := h.samples[n-1], h.samples[n-2]
	return last.X - prev.X, last.Y - prev.Y, true
}
