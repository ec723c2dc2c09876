package pose

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Recording is a captured sequence of detector outputs, one pose list per frame,
// in the coordinates of the frames the detector saw.
type Recording struct {
	Model  Model    `json:"model"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Frames [][]Pose `json:"frames"`
}

// ReadRecording decodes a JSON recording and checks its keypoint counts.
func ReadRecording(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}

	n := NumKeypoints(rec.Model)
	if n == 0 {
		return nil, fmt.Errorf("recording has unknown model %q", rec.Model)
	}
	for i, poses := range rec.Frames {
		for _, p := range poses {
			if len(p.Keypoints) != n {
				return nil, fmt.Errorf("frame %d: pose has %d keypoints, %s has %d", i+1, len(p.Keypoints), rec.Model, n)
			}
		}
	}
	return &rec, nil
}

// LoadRecording reads a recording file.
func LoadRecording(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecording(f)
}

// WriteRecording encodes a recording as JSON.
func WriteRecording(w io.Writer, rec *Recording) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
