// Package gesture classifies hand motion from pose keypoints into drum hits.
package gesture

import "github.com/ayusman/airdrum/internal/pose"

// HandSample is the averaged position of one hand in a single frame.
type HandSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Confidence is the fraction of the hand's landmarks that were observed
	// above the confidence threshold. It is a coverage ratio, not a probability.
	Confidence float64 `json:"confidence"`
}

// ExtractHand averages the keypoints listed in landmarks whose score exceeds threshold.
// Returns nil when none qualify.
func ExtractHand(p pose.Pose, landmarks []int, threshold float64) *HandSample {
	if len(landmarks) == 0 {
		return nil
	}

	var sumX, sumY float64
	count := 0
	for _, idx := range landmarks {
		kp, ok := p.Keypoint(idx)
		if !ok || kp.Score <= threshold {
			continue
		}
		sumX += kp.X
		sumY += kp.Y
		count++
	}

	if count == 0 {
		return nil
	}

	return &HandSample{
		X:          sumX / float64(count),
		Y:          sumY / float64(count),
		Confidence: float64(count) / float64(len(landmarks)),
	}
}
