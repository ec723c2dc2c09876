package pose

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Side identifies a hand.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Direction is the screen direction a hand's sideways gesture must move in.
type Direction int

const (
	// Leftward requires the x velocity to fall below the negated threshold.
	Leftward Direction = -1
	// Rightward requires the x velocity to exceed the threshold.
	Rightward Direction = 1
)

// String returns "leftward" or "rightward".
func (d Direction) String() string {
	switch d {
	case Leftward:
		return "leftward"
	case Rightward:
		return "rightward"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses "leftward"/"rightward" (or "-1"/"1").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leftward", "left", "-1":
		return Leftward, nil
	case "rightward", "right", "1":
		return Rightward, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// HandMapping assigns a group of keypoint indices to one hand.
type HandMapping struct {
	Side      Side      `json:"side"`
	Landmarks []int     `json:"landmarks"`
	Sideways  Direction `json:"sideways"`
}

// Schema is a named pair of hand mappings for a pose model.
type Schema struct {
	Name  string      `json:"name"`
	Model Model       `json:"model"`
	Left  HandMapping `json:"left"`
	Right HandMapping `json:"right"`
}

// ErrInvalidSchema is returned by Validate for unusable schemas.
var ErrInvalidSchema = errors.New("invalid schema")

// Hands returns the left and right mappings in that order.
func (s Schema) Hands() []HandMapping {
	return []HandMapping{s.Left, s.Right}
}

// Validate checks that both hands have landmarks inside the model's range
// and a usable sideways direction.
func (s Schema) Validate() error {
	n := NumKeypoints(s.Model)
	if n == 0 {
		return fmt.Errorf("%w: unknown model %q", ErrInvalidSchema, s.Model)
	}
	for _, h := range s.Hands() {
		if h.Side != Left && h.Side != Right {
			return fmt.Errorf("%w: unknown side %q", ErrInvalidSchema, h.Side)
		}
		if len(h.Landmarks) == 0 {
			return fmt.Errorf("%w: %s hand has no landmarks", ErrInvalidSchema, h.Side)
		}
		for _, idx := range h.Landmarks {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: %s landmark %d outside %s range", ErrInvalidSchema, h.Side, idx, s.Model)
			}
		}
		if h.Sideways != Leftward && h.Sideways != Rightward {
			return fmt.Errorf("%w: %s hand has no sideways direction", ErrInvalidSchema, h.Side)
		}
	}
	if s.Left.Side == s.Right.Side {
		return fmt.Errorf("%w: both hands map to %s", ErrInvalidSchema, s.Left.Side)
	}
	return nil
}

// Built-in schemas. Model variants disagree on which landmarks make up a hand,
// so none of these is the default; the active one is always chosen by name.
var presets = map[string]Schema{
	"movenet-wrist-elbow": {
		Name:  "movenet-wrist-elbow",
		Model: ModelMoveNet,
		Left:  HandMapping{Side: Left, Landmarks: []int{MoveNetLeftWrist, MoveNetLeftElbow}, Sideways: Leftward},
		Right: HandMapping{Side: Right, Landmarks: []int{MoveNetRightWrist, MoveNetRightElbow}, Sideways: Rightward},
	},
	"movenet-wrist": {
		Name:  "movenet-wrist",
		Model: ModelMoveNet,
		Left:  HandMapping{Side: Left, Landmarks: []int{MoveNetLeftWrist}, Sideways: Leftward},
		Right: HandMapping{Side: Right, Landmarks: []int{MoveNetRightWrist}, Sideways: Rightward},
	},
	"blazepose-hand": {
		Name:  "blazepose-hand",
		Model: ModelBlazePose,
		Left: HandMapping{Side: Left, Sideways: Leftward,
			Landmarks: []int{BlazeLeftWrist, BlazeLeftPinky, BlazeLeftIndex, BlazeLeftThumb}},
		Right: HandMapping{Side: Right, Sideways: Rightward,
			Landmarks: []int{BlazeRightWrist, BlazeRightPinky, BlazeRightIndex, BlazeRightThumb}},
	},
	"blazepose-forearm": {
		Name:  "blazepose-forearm",
		Model: ModelBlazePose,
		Left: HandMapping{Side: Left, Sideways: Leftward,
			Landmarks: []int{BlazeLeftElbow, BlazeLeftWrist, BlazeLeftPinky, BlazeLeftIndex, BlazeLeftThumb}},
		Right: HandMapping{Side: Right, Sideways: Rightward,
			Landmarks: []int{BlazeRightElbow, BlazeRightWrist, BlazeRightPinky, BlazeRightIndex, BlazeRightThumb}},
	},
}

// Preset returns a copy of a built-in schema by name.
func Preset(name string) (Schema, bool) {
	s, ok := presets[name]
	if !ok {
		return Schema{}, false
	}
	return s.clone(), true
}

// Presets returns all built-in schemas sorted by name.
func Presets() []Schema {
	out := make([]Schema, 0, len(presets))
	for _, s := range presets {
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (s Schema) clone() Schema {
	s.Left.Landmarks = append([]int(nil), s.Left.Landmarks...)
	s.Right.Landmarks = append([]int(nil), s.Right.Landmarks...)
	return s
}
