// Package detector runs body pose estimation on camera frames.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/airdrum/internal/pose"
)

// Detector defines the interface for body pose estimation implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected poses.
	// Returns an empty slice if nobody is in frame.
	Detect(frame *gocv.Mat) ([]pose.Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// Model selects the landmark layout the service should run.
	Model pose.Model

	// MaxPoses is the maximum number of bodies to detect (default: 1).
	MaxPoses int

	// MinConfidence is the minimum pose detection confidence (0.0-1.0).
	MinConfidence float64

	// Script overrides the pose service script location.
	Script string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Model:         pose.ModelMoveNet,
		MaxPoses:      1,
		MinConfidence: 0.25,
	}
}
