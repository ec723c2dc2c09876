package gesture

import "github.com/ayusman/airdrum/internal/pose"

// DetectHit reports a downward strike: the newest vertical velocity exceeds threshold.
// Screen y grows downward. Nothing is reported until the history window is full.
func DetectHit(h *History, threshold float64) bool {
	if !h.Full() {
		return false
	}
	_, dy, ok := h.Velocity()
	return ok && dy > threshold
}

// DetectSideways reports a lateral strike in the given direction.
// Leftward needs dx < -threshold, Rightward needs dx > threshold.
func DetectSideways(h *History, threshold float64, dir pose.Direction) bool {
	if !h.Full() {
		return false
	}
	dx, _, ok := h.Velocity()
	if !ok {
		return false
	}

	switch dir {
	case pose.Rightward:
		return dx > threshold
	case pose.Leftward:
		return dx < -threshold
	}
	return false
}
