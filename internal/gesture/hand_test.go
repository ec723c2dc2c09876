package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/airdrum/internal/pose"
)

const epsilon = 1e-9

func TestExtractHand(t *testing.T) {
	landmarks := []int{pose.BlazeLeftWrist, pose.BlazeLeftPinky, pose.BlazeLeftIndex, pose.BlazeLeftThumb}

	tests := []struct {
		name           string
		scores         []float64
		wantNil        bool
		wantX, wantY   float64
		wantConfidence float64
	}{
		{
			name:    "all below threshold",
			scores:  []float64{0.1, 0.05, 0.2, 0.0},
			wantNil: true,
		},
		{
			name:           "all eligible",
			scores:         []float64{0.9, 0.9, 0.9, 0.9},
			wantX:          115,
			wantY:          215,
			wantConfidence: 1.0,
		},
		{
			name:           "half eligible",
			scores:         []float64{0.9, 0.1, 0.8, 0.2},
			wantX:          110,
			wantY:          210,
			wantConfidence: 0.5,
		},
		{
			name:           "threshold is exclusive",
			scores:         []float64{0.2, 0.2, 0.2, 0.21},
			wantX:          130,
			wantY:          230,
			wantConfidence: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pose.NewPose(pose.ModelBlazePose)
			// keypoint k sits at (100+10k, 200+10k)
			for k, idx := range landmarks {
				p = p.With(100+10*float64(k), 200+10*float64(k), tt.scores[k], idx)
			}

			got := ExtractHand(p, landmarks, 0.2)

			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil sample, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected sample, got nil")
			}
			if math.Abs(got.X-tt.wantX) > epsilon || math.Abs(got.Y-tt.wantY) > epsilon {
				t.Errorf("position = (%f, %f), want (%f, %f)", got.X, got.Y, tt.wantX, tt.wantY)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > epsilon {
				t.Errorf("confidence = %f, want %f", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestExtractHand_ConfidenceIsCoverage(t *testing.T) {
	landmarks := []int{pose.MoveNetLeftWrist, pose.MoveNetLeftElbow}
	base := pose.NewPose(pose.ModelMoveNet)

	for eligible := 0; eligible <= len(landmarks); eligible++ {
		p := base
		for k := 0; k < eligible; k++ {
			p = p.With(50, 60, 0.95, landmarks[k])
		}

		got := ExtractHand(p, landmarks, DefaultConfidenceThreshold)

		if eligible == 0 {
			if got != nil {
				t.Errorf("eligible=0: expected nil, got %+v", got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("eligible=%d: expected sample", eligible)
		}
		want := float64(eligible) / float64(len(landmarks))
		if got.Confidence != want {
			t.Errorf("eligible=%d: confidence = %f, want %f", eligible, got.Confidence, want)
		}
		if got.Confidence <= 0 || got.Confidence > 1 {
			t.Errorf("confidence %f outside (0,1]", got.Confidence)
		}
	}
}

func TestExtractHand_EdgeCases(t *testing.T) {
	p := pose.StandingPose()

	t.Run("empty mapping", func(t *testing.T) {
		if got := ExtractHand(p, nil, 0.2); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("index outside pose is skipped", func(t *testing.T) {
		got := ExtractHand(p, []int{pose.MoveNetLeftWrist, 40}, 0.2)
		if got == nil {
			t.Fatal("expected sample")
		}
		if got.Confidence != 0.5 {
			t.Errorf("confidence = %f, want 0.5", got.Confidence)
		}
		if got.X != p.Keypoints[pose.MoveNetLeftWrist].X {
			t.Errorf("x = %f, want wrist x", got.X)
		}
	})

	t.Run("empty pose", func(t *testing.T) {
		if got := ExtractHand(pose.Pose{}, []int{0, 1}, 0.2); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}
