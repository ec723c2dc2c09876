package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/airdrum/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a script of pose sets, one per Detect call, then keeps
// returning the last one.
type MockDetector struct {
	mu     sync.Mutex
	script [][]pose.Pose
	index  int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPoses makes every Detect call return the given poses.
func (m *MockDetector) SetPoses(poses []pose.Pose) {
	m.SetScript([][]pose.Pose{poses})
}

// SetScript sets the sequence of pose sets returned by successive Detect calls.
func (m *MockDetector) SetScript(script [][]pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted pose set or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]pose.Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) == 0 {
		return nil, nil
	}

	poses := m.script[m.index]
	if m.index < len(m.script)-1 {
		m.index++
	}
	return poses, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
