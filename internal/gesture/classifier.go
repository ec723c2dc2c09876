package gesture

import (
	"errors"
	"fmt"

	"github.com/ayusman/airdrum/internal/pose"
)

// Kind is the type of a classified strike.
type Kind string

const (
	// KindHitDown is a downward strike.
	KindHitDown Kind = "hit-down"
	// KindHitSideways is a lateral strike away from the body.
	KindHitSideways Kind = "hit-sideways"
)

// Default classifier settings.
const (
	DefaultConfidenceThreshold = 0.2
	DefaultHistorySize         = 5
	DefaultHitThreshold        = 15.0
	DefaultSidewaysThreshold   = 10.0
	DefaultCooldownFrames      = 10
)

// ErrInvalidConfig is returned when a classifier config cannot be used.
var ErrInvalidConfig = errors.New("invalid classifier config")

// Event is a strike emitted for one hand in one frame.
type Event struct {
	Hand      pose.Side      `json:"hand"`
	Kind      Kind           `json:"kind"`
	Frame     uint64         `json:"frame"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Velocity  float64        `json:"velocity"`
	Direction pose.Direction `json:"direction,omitempty"`
}

// Config holds classifier settings.
type Config struct {
	Schema              pose.Schema
	ConfidenceThreshold float64 // keypoints must score above this
	HistorySize         int     // samples per hand, also the warm-up window
	HitThreshold        float64 // downward px/frame
	SidewaysThreshold   float64 // lateral px/frame
	CooldownFrames      int     // frames suppressed after an event
}

// DefaultConfig returns the default settings for a schema.
func DefaultConfig(schema pose.Schema) Config {
	return Config{
		Schema:              schema,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		HistorySize:         DefaultHistorySize,
		HitThreshold:        DefaultHitThreshold,
		SidewaysThreshold:   DefaultSidewaysThreshold,
		CooldownFrames:      DefaultCooldownFrames,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if err := c.Schema.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.HistorySize < 2 {
		return fmt.Errorf("%w: history size %d, need at least 2", ErrInvalidConfig, c.HistorySize)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("%w: confidence threshold %.2f outside [0,1)", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.HitThreshold < 0 || c.SidewaysThreshold < 0 {
		return fmt.Errorf("%w: negative velocity threshold", ErrInvalidConfig)
	}
	if c.CooldownFrames < 0 {
		return fmt.Errorf("%w: negative cooldown", ErrInvalidConfig)
	}
	return nil
}

// HandState is the per-frame result for one hand.
type HandState struct {
	Side     pose.Side   `json:"side"`
	Sample   *HandSample `json:"sample"`
	Cooldown int         `json:"cooldown"`
	// Evaluated is false while cooling down; the velocities are only set when true.
	Evaluated bool    `json:"evaluated"`
	VelocityX float64 `json:"velocity_x"`
	VelocityY float64 `json:"velocity_y"`
	Event     *Event  `json:"event,omitempty"`
}

// Cooling reports whether the hand is suppressed.
func (h HandState) Cooling() bool {
	return h.Cooldown > 0
}

// Frame is the classifier output for one tick.
type Frame struct {
	Number uint64      `json:"frame"`
	Hands  []HandState `json:"hands"`
	Events []Event     `json:"events"`
}

type handTrack struct {
	history  *History
	cooldown int
}

// Session holds the mutable per-hand state of one classification run.
// It is owned by the frame loop and must not be shared between goroutines.
type Session struct {
	hands []handTrack
	frame uint64
}

func newSession(historySize, hands int) *Session {
	s := &Session{hands: make([]handTrack, hands)}
	for i := range s.hands {
		s.hands[i].history = NewHistory(historySize)
	}
	return s
}

// Frames returns the number of ticks processed.
func (s *Session) Frames() uint64 {
	return s.frame
}

// Cooldown returns the remaining cooldown of hand i (0 left, 1 right).
func (s *Session) Cooldown(i int) int {
	if i < 0 || i >= len(s.hands) {
		return 0
	}
	return s.hands[i].cooldown
}

// History returns the history of hand i (0 left, 1 right).
func (s *Session) History(i int) *History {
	if i < 0 || i >= len(s.hands) {
		return nil
	}
	return s.hands[i].history
}

// Reset clears histories, cooldowns and the frame counter.
func (s *Session) Reset() {
	for i := range s.hands {
		s.hands[i].history.Reset()
		s.hands[i].cooldown = 0
	}
	s.frame = 0
}

// Classifier turns pose sets into strike events.
type Classifier struct {
	config Config
}

// NewClassifier validates the config and returns a classifier.
func NewClassifier(config Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{config: config}, nil
}

// Config returns the classifier settings.
func (c *Classifier) Config() Config {
	return c.config
}

// NewSession creates an empty session sized for this classifier.
func (c *Classifier) NewSession() *Session {
	return newSession(c.config.HistorySize, len(c.config.Schema.Hands()))
}

// Tick classifies one frame. Only the first pose is used; an empty list
// counts as lost tracking for every hand.
//
// Per hand: a nonzero cooldown is decremented, the history is updated, and
// only a hand whose cooldown is zero is evaluated. The vertical detector
// runs first, so a frame emits at most one event per hand.
func (c *Classifier) Tick(s *Session, poses []pose.Pose) Frame {
	s.frame++

	var primary *pose.Pose
	if len(poses) > 0 {
		primary = &poses[0]
	}

	mappings := c.config.Schema.Hands()
	out := Frame{
		Number: s.frame,
		Hands:  make([]HandState, 0, len(mappings)),
	}

	for i, m := range mappings {
		track := &s.hands[i]

		if track.cooldown > 0 {
			track.cooldown--
		}

		var sample *HandSample
		if primary != nil {
			sample = ExtractHand(*primary, m.Landmarks, c.config.ConfidenceThreshold)
		}
		track.history.Update(sample)

		state := HandState{Side: m.Side, Sample: sample}

		if track.cooldown == 0 {
			state.Evaluated = true
			state.VelocityX, state.VelocityY, _ = track.history.Velocity()

			if ev := c.detect(track.history, m, s.frame, state.VelocityX, state.VelocityY); ev != nil {
				track.cooldown = c.config.CooldownFrames
				state.Event = ev
				out.Events = append(out.Events, *ev)
			}
		}

		state.Cooldown = track.cooldown
		out.Hands = append(out.Hands, state)
	}

	return out
}

func (c *Classifier) detect(h *History, m pose.HandMapping, frame uint64, vx, vy float64) *Event {
	last, ok := h.Last()
	if !ok {
		return nil
	}

	if DetectHit(h, c.config.HitThreshold) {
		return &Event{
			Hand:     m.Side,
			Kind:     KindHitDown,
			Frame:    frame,
			X:        last.X,
			Y:        last.Y,
			Velocity: vy,
		}
	}

	if DetectSideways(h, c.config.SidewaysThreshold, m.Sideways) {
		return &Event{
			Hand:      m.Side,
			Kind:      KindHitSideways,
			Frame:     frame,
			X:         last.X,
			Y:         last.Y,
			Velocity:  vx,
			Direction: m.Sideways,
		}
	}

	return nil
}
