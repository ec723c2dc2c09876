package pose

// NewPose returns a pose for the given model with every keypoint at (0,0) and score 0.
func NewPose(model Model) Pose {
	n := NumKeypoints(model)
	p := Pose{Keypoints: make([]Keypoint, n), Score: 1}
	for i := range p.Keypoints {
		p.Keypoints[i].Index = i
	}
	return p
}

// With returns a copy of the pose with the listed keypoints placed at (x, y) with the given score.
func (p Pose) With(x, y, score float64, indices ...int) Pose {
	out := Pose{Keypoints: append([]Keypoint(nil), p.Keypoints...), Score: p.Score}
	for _, i := range indices {
		if i < 0 || i >= len(out.Keypoints) {
			continue
		}
		out.Keypoints[i].X = x
		out.Keypoints[i].Y = y
		out.Keypoints[i].Score = score
	}
	return out
}

// StandingPose returns a MoveNet pose of a person standing with hands at chest height,
// positioned for a 640x480 frame.
func StandingPose() Pose {
	p := NewPose(ModelMoveNet)
	set := func(i int, x, y float64) {
		p.Keypoints[i].X = x
		p.Keypoints[i].Y = y
		p.Keypoints[i].Score = 0.9
	}

	set(MoveNetNose, 320, 100)
	set(MoveNetLeftEye, 335, 90)
	set(MoveNetRightEye, 305, 90)
	set(MoveNetLeftEar, 350, 95)
	set(MoveNetRightEar, 290, 95)
	set(MoveNetLeftShoulder, 380, 170)
	set(MoveNetRightShoulder, 260, 170)
	set(MoveNetLeftElbow, 410, 250)
	set(MoveNetRightElbow, 230, 250)
	set(MoveNetLeftWrist, 400, 230)
	set(MoveNetRightWrist, 240, 230)
	set(MoveNetLeftHip, 360, 330)
	set(MoveNetRightHip, 280, 330)
	set(MoveNetLeftKnee, 365, 400)
	set(MoveNetRightKnee, 275, 400)
	set(MoveNetLeftAnkle, 365, 470)
	set(MoveNetRightAnkle, 275, 470)

	return p
}
