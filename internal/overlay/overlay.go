// Package overlay draws detected poses and classifier state onto video frames.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/airdrum/internal/gesture"
	"github.com/ayusman/airdrum/internal/pose"
)

// Hint is shown while nobody is in view.
const Hint = "Move in front of the camera"

var (
	keypointColor = color.RGBA{R: 255, A: 255}
	boneColor     = color.RGBA{R: 255, A: 255}
	idleColor     = color.RGBA{G: 255, A: 255}
	coolingColor  = color.RGBA{R: 255, G: 165, A: 255}
	textColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	flashColor    = color.RGBA{R: 255, G: 255, A: 255}
)

// Config controls what the renderer draws.
type Config struct {
	Model pose.Model
	// KeypointThreshold hides keypoints and bones scoring at or below it.
	KeypointThreshold float64
	KeypointRadius    int
	BoneThickness     int
	HandRadius        int
	// FlashFrames is how long an event label stays on screen.
	FlashFrames int
}

// DefaultConfig returns the default drawing settings for a model.
func DefaultConfig(model pose.Model) Config {
	return Config{
		Model:             model,
		KeypointThreshold: 0.2,
		KeypointRadius:    5,
		BoneThickness:     2,
		HandRadius:        18,
		FlashFrames:       gesture.DefaultCooldownFrames,
	}
}

type flash struct {
	label string
	until uint64
}

// Renderer draws overlays frame by frame. Event labels persist across calls,
// so a renderer belongs to one stream.
type Renderer struct {
	config   Config
	skeleton []pose.Edge
	flashes  map[pose.Side]flash
}

// NewRenderer creates a renderer.
func NewRenderer(config Config) *Renderer {
	return &Renderer{
		config:   config,
		skeleton: pose.Skeleton(config.Model),
		flashes:  make(map[pose.Side]flash),
	}
}

// Draw renders the first pose, the tracked hands and any event labels onto img.
// Poses must already be in the frame's coordinate space (mirrored if the frame is).
func (r *Renderer) Draw(img *gocv.Mat, poses []pose.Pose, frame gesture.Frame) {
	if len(poses) == 0 {
		gocv.PutText(img, Hint, image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, textColor, 2)
	} else {
		r.drawPose(img, poses[0])
	}

	for _, hand := range frame.Hands {
		if hand.Event != nil {
			r.flashes[hand.Side] = flash{label: Label(*hand.Event), until: frame.Number + uint64(r.config.FlashFrames)}
		}
		if hand.Sample == nil {
			continue
		}
		r.drawHand(img, hand)
	}

	row := 0
	for _, side := range []pose.Side{pose.Left, pose.Right} {
		f, ok := r.flashes[side]
		if !ok {
			continue
		}
		if frame.Number >= f.until {
			delete(r.flashes, side)
			continue
		}
		gocv.PutText(img, f.label, image.Pt(10, img.Rows()-20-30*row), gocv.FontHersheySimplex, 0.9, flashColor, 2)
		row++
	}
}

func (r *Renderer) drawPose(img *gocv.Mat, p pose.Pose) {
	visible := func(i int) (pose.Keypoint, bool) {
		kp, ok := p.Keypoint(i)
		return kp, ok && kp.Score > r.config.KeypointThreshold
	}

	for _, e := range r.skeleton {
		a, okA := visible(e[0])
		b, okB := visible(e[1])
		if !okA || !okB {
			continue
		}
		gocv.Line(img, point(a.X, a.Y), point(b.X, b.Y), boneColor, r.config.BoneThickness)
	}

	for _, kp := range p.Keypoints {
		if kp.Score <= r.config.KeypointThreshold {
			continue
		}
		gocv.Circle(img, point(kp.X, kp.Y), r.config.KeypointRadius, keypointColor, -1)
	}
}

func (r *Renderer) drawHand(img *gocv.Mat, hand gesture.HandState) {
	center := point(hand.Sample.X, hand.Sample.Y)

	if hand.Cooling() {
		gocv.Circle(img, center, r.config.HandRadius, coolingColor, 3)
		return
	}

	gocv.Circle(img, center, r.config.HandRadius, idleColor, 3)
	if hand.Evaluated {
		text := fmt.Sprintf("%.0f", hand.VelocityY)
		gocv.PutText(img, text, image.Pt(center.X+r.config.HandRadius+4, center.Y), gocv.FontHersheySimplex, 0.6, textColor, 2)
	}
}

// Label is the on-screen text for an event, e.g. "hit-down left".
func Label(ev gesture.Event) string {
	return fmt.Sprintf("%s %s", ev.Kind, ev.Hand)
}

// Encode compresses img to JPEG.
func Encode(img gocv.Mat) ([]byte, error) {
	if img.Empty() {
		return nil, errors.New("encode empty frame")
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func point(x, y float64) image.Point {
	return image.Pt(int(x+0.5), int(y+0.5))
}
