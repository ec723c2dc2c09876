// Package app wires the camera, pose detector, classifier and plugins into the
// air drumming pipeline.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/airdrum/internal/capture"
	"github.com/ayusman/airdrum/internal/detector"
	"github.com/ayusman/airdrum/internal/gesture"
	"github.com/ayusman/airdrum/internal/latest"
	"github.com/ayusman/airdrum/internal/overlay"
	"github.com/ayusman/airdrum/internal/plugin"
	"github.com/ayusman/airdrum/internal/pose"
	"github.com/ayusman/airdrum/internal/store"
)

// Pipeline defaults.
const (
	DefaultFPS             = capture.DefaultFPS
	DefaultPluginTimeoutMs = 5000
)

// ErrBusy is returned when the pipeline is already running or replaying.
var ErrBusy = errors.New("pipeline busy")

// Config holds configuration options for the application.
type Config struct {
	Store      *store.Store
	PluginDir  string
	Camera     capture.Config
	Detector   detector.Config
	Classifier gesture.Config
	// FPS is the render loop rate. Velocities are measured per rendered frame.
	FPS             int
	PluginTimeoutMs int
}

// Publisher receives every classified frame, e.g. a WebSocket hub.
type Publisher interface {
	Publish(v any) error
}

// Status is a snapshot of the pipeline.
type Status struct {
	Running    bool         `json:"running"`
	Enabled    bool         `json:"enabled"`
	SessionID  string       `json:"session_id,omitempty"`
	Schema     string       `json:"schema"`
	Frames     uint64       `json:"frames"`
	Hits       uint64       `json:"hits"`
	FrameStats latest.Stats `json:"frame_stats"`
	PoseStats  latest.Stats `json:"pose_stats"`
}

// App is the main application that turns camera frames into drum hits.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	renderer   *overlay.Renderer
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	publisher  Publisher

	// Frame loop state, owned by the render goroutine while running.
	session *gesture.Session

	inbox *latest.Cell[*gocv.Mat]
	poses *latest.Cell[[]pose.Pose]
	jpeg  *latest.Cell[[]byte]

	frames atomic.Uint64

	mu        sync.RWMutex
	enabled   bool
	sessionID string
	replaying bool
	hits      uint64
	callbacks []func(gesture.Event)
	cancel    context.CancelFunc
	loops     sync.WaitGroup
	dispatch  sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	if config.PluginTimeoutMs <= 0 {
		config.PluginTimeoutMs = DefaultPluginTimeoutMs
	}
	if config.Detector.Model == "" {
		config.Detector.Model = config.Classifier.Schema.Model
	}

	classifier, err := gesture.NewClassifier(config.Classifier)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		classifier: classifier,
		renderer:   overlay.NewRenderer(overlay.DefaultConfig(config.Classifier.Schema.Model)),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeoutMs),
		session:    classifier.NewSession(),
		inbox:      newInbox(),
		poses:      latest.New[[]pose.Pose](),
		jpeg:       latest.New[[]byte](),
		enabled:    true,
	}

	// Try the pose service first, fall back to mock detector
	if d, err := detector.NewServiceDetector(config.Detector); err == nil {
		a.detector = d
		log.Printf("Using pose service (%s)", config.Detector.Model)
	} else {
		log.Printf("Pose service not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a, nil
}

// newInbox holds the frame waiting for inference. Overwritten frames are closed.
func newInbox() *latest.Cell[*gocv.Mat] {
	return latest.NewWithRelease(func(m *gocv.Mat) { m.Close() })
}

// SetEnabled enables or disables classification. The video stream keeps running.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether classification is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the pose detector. Call before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the frame source. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetPublisher sets where classified frames are published.
func (a *App) SetPublisher(p Publisher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publisher = p
}

// RegisterEventCallback adds a function called for every emitted event.
// Callbacks run on the render goroutine and must not block.
func (a *App) RegisterEventCallback(fn func(gesture.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// sessionSettings is stored with each session row.
type sessionSettings struct {
	Schema              pose.Schema `json:"schema"`
	ConfidenceThreshold float64     `json:"confidence_threshold"`
	HistorySize         int         `json:"history_size"`
	HitThreshold        float64     `json:"hit_threshold"`
	SidewaysThreshold   float64     `json:"sideways_threshold"`
	CooldownFrames      int         `json:"cooldown_frames"`
	FPS                 int         `json:"fps"`
}

// Start opens the camera and begins the inference and render loops.
// Calling Start on a running app does nothing.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if a.replaying {
		return ErrBusy
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	a.camera.SetFPS(a.config.FPS)

	a.inbox.Close()
	a.inbox = newInbox()
	a.poses = latest.New[[]pose.Pose]()
	a.resetSession()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.loops.Add(2)
	go a.runInference(ctx, a.inbox, a.poses, a.detector)
	go a.runRender(ctx)

	log.Printf("Pipeline started at %d FPS with schema %s", a.config.FPS, a.config.Classifier.Schema.Name)
	return nil
}

// resetSession starts a fresh classifier session and, with a store, a session row.
// Callers hold a.mu.
func (a *App) resetSession() {
	a.session = a.classifier.NewSession()
	a.hits = 0
	a.frames.Store(0)
	a.sessionID = ""

	if a.config.Store != nil {
		if err := a.startSession(); err != nil {
			log.Printf("Failed to record session: %v", err)
		}
	}
}

// endSession closes the session row with the number of classified frames.
func (a *App) endSession() {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()

	if a.config.Store != nil && sessionID != "" {
		if err := a.config.Store.Sessions().End(sessionID, int(a.session.Frames())); err != nil {
			log.Printf("Failed to end session %s: %v", sessionID, err)
		}
	}
}

// Replay classifies a recorded pose sequence as if each entry were one
// rendered frame, dispatching events the same way the live pipeline does.
// It runs in its own session and waits for plugin runs before returning.
func (a *App) Replay(rec *pose.Recording) ([]gesture.Event, error) {
	a.mu.Lock()
	if a.cancel != nil || a.replaying {
		a.mu.Unlock()
		return nil, ErrBusy
	}
	a.replaying = true
	a.resetSession()
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.replaying = false
		a.mu.Unlock()
	}()

	var events []gesture.Event
	for _, poses := range rec.Frames {
		if a.config.Camera.Mirror {
			poses = pose.MirrorAll(poses, float64(rec.Width))
		}
		events = append(events, a.step(poses).Events...)
	}

	a.dispatch.Wait()
	a.endSession()

	log.Printf("Replayed %d frames, %d events", len(rec.Frames), len(events))
	return events, nil
}

func (a *App) startSession() error {
	c := a.classifier.Config()
	settings, err := json.Marshal(sessionSettings{
		Schema:              c.Schema,
		ConfidenceThreshold: c.ConfidenceThreshold,
		HistorySize:         c.HistorySize,
		HitThreshold:        c.HitThreshold,
		SidewaysThreshold:   c.SidewaysThreshold,
		CooldownFrames:      c.CooldownFrames,
		FPS:                 a.config.FPS,
	})
	if err != nil {
		return err
	}

	s := &store.Session{
		ID:         uuid.New().String(),
		SchemaName: c.Schema.Name,
		Settings:   settings,
	}
	if err := a.config.Store.Sessions().Start(s); err != nil {
		return err
	}
	a.sessionID = s.ID
	return nil
}

// Stop halts the pipeline, waits for in-flight plugin runs and closes the session.
// Calling Stop on a stopped app does nothing.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	inbox := a.inbox
	a.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	inbox.Close()
	a.loops.Wait()
	a.dispatch.Wait()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.endSession()

	log.Printf("Pipeline stopped after %d frames", a.session.Frames())
}

// IsRunning reports whether the pipeline loops are active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

// Frames returns the cell holding the latest overlay JPEG.
func (a *App) Frames() *latest.Cell[[]byte] {
	return a.jpeg
}

// SessionID returns the ID of the current or last stored session.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// Status returns a snapshot of the pipeline.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := Status{
		Running:   a.cancel != nil,
		Enabled:   a.enabled,
		SessionID: a.sessionID,
		Schema:    a.config.Classifier.Schema.Name,
		Frames:    a.frames.Load(),
		Hits:      a.hits,
		PoseStats: a.poses.Stats(),
	}
	st.FrameStats = a.inbox.Stats()
	return st
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Classifier returns the classifier.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
