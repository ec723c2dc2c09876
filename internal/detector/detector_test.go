package detector

import (
	"errors"
	"testing"

	"github.com/ayusman/airdrum/internal/pose"
)

func TestDecodeResponse(t *testing.T) {
	t.Run("converts poses", func(t *testing.T) {
		line := []byte(`{"poses":[{"score":0.7,"keypoints":[{"name":"nose","x":10,"y":20,"score":0.9},{"name":"left_eye","x":12,"y":18,"score":0.1}]}]}` + "\n")

		poses, err := decodeResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(poses) != 1 {
			t.Fatalf("expected 1 pose, got %d", len(poses))
		}
		if len(poses[0].Keypoints) != 2 {
			t.Fatalf("expected 2 keypoints, got %d", len(poses[0].Keypoints))
		}
		kp := poses[0].Keypoints[1]
		if kp.Index != 1 || kp.Name != "left_eye" || kp.X != 12 || kp.Score != 0.1 {
			t.Errorf("unexpected keypoint %+v", kp)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		poses, err := decodeResponse([]byte(`{"poses":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(poses) != 0 {
			t.Errorf("expected no poses, got %d", len(poses))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`not json`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns nil poses by default", func(t *testing.T) {
		mock := NewMockDetector()

		poses, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if poses != nil {
			t.Errorf("expected nil poses, got %v", poses)
		}
	})

	t.Run("replays script then repeats the last entry", func(t *testing.T) {
		mock := NewMockDetector()
		first := []pose.Pose{pose.StandingPose()}
		mock.SetScript([][]pose.Pose{first, nil})

		got, _ := mock.Detect(nil)
		if len(got) != 1 {
			t.Fatalf("expected 1 pose on first call, got %d", len(got))
		}
		for i := 0; i < 3; i++ {
			got, _ = mock.Detect(nil)
			if got != nil {
				t.Errorf("call %d: expected nil, got %v", i+2, got)
			}
		}
		if mock.Calls() != 4 {
			t.Errorf("expected 4 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("inference failed")
		mock.SetError(expectedErr)

		poses, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if poses != nil {
			t.Errorf("expected nil poses when error is set, got %v", poses)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*ServiceDetector)(nil)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Model != pose.ModelMoveNet || cfg.MaxPoses != 1 {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}
