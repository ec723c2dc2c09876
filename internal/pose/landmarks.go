// Package pose provides body pose types, landmark schemas and detector bridges.
package pose

// Model identifies the landmark layout produced by a pose model.
type Model string

const (
	// ModelMoveNet is the 17-keypoint COCO layout used by MoveNet.
	ModelMoveNet Model = "movenet"
	// ModelBlazePose is the 33-keypoint layout used by BlazePose.
	ModelBlazePose Model = "blazepose"
)

// MoveNet keypoint indices (COCO order).
const (
	MoveNetNose          = 0
	MoveNetLeftEye       = 1
	MoveNetRightEye      = 2
	MoveNetLeftEar       = 3
	MoveNetRightEar      = 4
	MoveNetLeftShoulder  = 5
	MoveNetRightShoulder = 6
	MoveNetLeftElbow     = 7
	MoveNetRightElbow    = 8
	MoveNetLeftWrist     = 9
	MoveNetRightWrist    = 10
	MoveNetLeftHip       = 11
	MoveNetRightHip      = 12
	MoveNetLeftKnee      = 13
	MoveNetRightKnee     = 14
	MoveNetLeftAnkle     = 15
	MoveNetRightAnkle    = 16
	NumMoveNetKeypoints  = 17
)

// BlazePose keypoint indices.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	BlazeNose           = 0
	BlazeLeftEyeInner   = 1
	BlazeLeftEye        = 2
	BlazeLeftEyeOuter   = 3
	BlazeRightEyeInner  = 4
	BlazeRightEye       = 5
	BlazeRightEyeOuter  = 6
	BlazeLeftEar        = 7
	BlazeRightEar       = 8
	BlazeMouthLeft      = 9
	BlazeMouthRight     = 10
	BlazeLeftShoulder   = 11
	BlazeRightShoulder  = 12
	BlazeLeftElbow      = 13
	BlazeRightElbow     = 14
	BlazeLeftWrist      = 15
	BlazeRightWrist     = 16
	BlazeLeftPinky      = 17
	BlazeRightPinky     = 18
	BlazeLeftIndex      = 19
	BlazeRightIndex     = 20
	BlazeLeftThumb      = 21
	BlazeRightThumb     = 22
	BlazeLeftHip        = 23
	BlazeRightHip       = 24
	BlazeLeftKnee       = 25
	BlazeRightKnee      = 26
	BlazeLeftAnkle      = 27
	BlazeRightAnkle     = 28
	BlazeLeftHeel       = 29
	BlazeRightHeel      = 30
	BlazeLeftFootIndex  = 31
	BlazeRightFootIndex = 32
	NumBlazeKeypoints   = 33
)

// Edge is a skeleton connection between two keypoint indices.
type Edge [2]int

var moveNetSkeleton = []Edge{
	{MoveNetNose, MoveNetLeftEye}, {MoveNetNose, MoveNetRightEye},
	{MoveNetLeftEye, MoveNetLeftEar}, {MoveNetRightEye, MoveNetRightEar},
	{MoveNetLeftShoulder, MoveNetRightShoulder},
	{MoveNetLeftShoulder, MoveNetLeftElbow}, {MoveNetLeftElbow, MoveNetLeftWrist},
	{MoveNetRightShoulder, MoveNetRightElbow}, {MoveNetRightElbow, MoveNetRightWrist},
	{MoveNetLeftShoulder, MoveNetLeftHip}, {MoveNetRightShoulder, MoveNetRightHip},
	{MoveNetLeftHip, MoveNetRightHip},
	{MoveNetLeftHip, MoveNetLeftKnee}, {MoveNetLeftKnee, MoveNetLeftAnkle},
	{MoveNetRightHip, MoveNetRightKnee}, {MoveNetRightKnee, MoveNetRightAnkle},
}

var blazeSkeleton = []Edge{
	{BlazeLeftShoulder, BlazeRightShoulder},
	{BlazeLeftShoulder, BlazeLeftElbow}, {BlazeLeftElbow, BlazeLeftWrist},
	{BlazeLeftWrist, BlazeLeftPinky}, {BlazeLeftWrist, BlazeLeftIndex}, {BlazeLeftWrist, BlazeLeftThumb},
	{BlazeLeftPinky, BlazeLeftIndex},
	{BlazeRightShoulder, BlazeRightElbow}, {BlazeRightElbow, BlazeRightWrist},
	{BlazeRightWrist, BlazeRightPinky}, {BlazeRightWrist, BlazeRightIndex}, {BlazeRightWrist, BlazeRightThumb},
	{BlazeRightPinky, BlazeRightIndex},
	{BlazeLeftShoulder, BlazeLeftHip}, {BlazeRightShoulder, BlazeRightHip},
	{BlazeLeftHip, BlazeRightHip},
	{BlazeLeftHip, BlazeLeftKnee}, {BlazeLeftKnee, BlazeLeftAnkle},
	{BlazeRightHip, BlazeRightKnee}, {BlazeRightKnee, BlazeRightAnkle},
}

// Skeleton returns the skeleton edges for a model, or nil for an unknown model.
func Skeleton(m Model) []Edge {
	switch m {
	case ModelMoveNet:
		return moveNetSkeleton
	case ModelBlazePose:
		return blazeSkeleton
	}
	return nil
}

// NumKeypoints returns the number of keypoints a model produces.
func NumKeypoints(m Model) int {
	switch m {
	case ModelMoveNet:
		return NumMoveNetKeypoints
	case ModelBlazePose:
		return NumBlazeKeypoints
	}
	return 0
}

// Keypoint is a single landmark in frame pixel coordinates.
type Keypoint struct {
	Index int     `json:"index"`
	Name  string  `json:"name,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// Pose is the ordered keypoint list for one detected body.
type Pose struct {
	Keypoints []Keypoint `json:"keypoints"`
	Score     float64    `json:"score"`
}

// Keypoint returns the keypoint at index i.
func (p Pose) Keypoint(i int) (Keypoint, bool) {
	if i < 0 || i >= len(p.Keypoints) {
		return Keypoint{}, false
	}
	return p.Keypoints[i], true
}

// Mirror returns a copy of the pose flipped horizontally within a frame of the given width.
func (p Pose) Mirror(width float64) Pose {
	mirrored := Pose{
		Keypoints: make([]Keypoint, len(p.Keypoints)),
		Score:     p.Score,
	}
	for i, kp := range p.Keypoints {
		kp.X = width - kp.X
		mirrored.Keypoints[i] = kp
	}
	return mirrored
}

// MirrorAll mirrors every pose in the list.
func MirrorAll(poses []Pose, width float64) []Pose {
	if poses == nil {
		return nil
	}
	out := make([]Pose, len(poses))
	for i, p := range poses {
		out[i] = p.Mirror(width)
	}
	return out
}
