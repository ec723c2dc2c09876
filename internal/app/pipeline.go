package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airdrum/internal/detector"
	"github.com/ayusman/airdrum/internal/gesture"
	"github.com/ayusman/airdrum/internal/latest"
	"github.com/ayusman/airdrum/internal/overlay"
	"github.com/ayusman/airdrum/internal/plugin"
	"github.com/ayusman/airdrum/internal/pose"
	"github.com/ayusman/airdrum/internal/store"
)

// frameMessage is published for every rendered frame.
type frameMessage struct {
	gesture.Frame
	Enabled bool `json:"enabled"`
}

// hitParams is sent to plugins alongside the binding config.
type hitParams struct {
	Frame     uint64  `json:"frame"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Velocity  float64 `json:"velocity"`
	Direction int     `json:"direction,omitempty"`
}

// runInference feeds the newest camera frame to the detector and publishes
// the resulting poses. Frames that arrive while a detection is running are
// overwritten, so the detector never works on a backlog.
func (a *App) runInference(ctx context.Context, inbox *latest.Cell[*gocv.Mat], out *latest.Cell[[]pose.Pose], d detector.Detector) {
	defer a.loops.Done()

	for {
		frame, err := inbox.Wait(ctx)
		if err != nil {
			return
		}

		poses, err := d.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("Error detecting poses: %v", err)
			continue
		}
		out.Store(poses)
	}
}

// runRender is the fixed-rate frame loop. It owns the classifier session.
func (a *App) runRender(ctx context.Context) {
	defer a.loops.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}
			a.renderFrame(frame)
			frame.Close()
		}
	}
}

// renderFrame offers the frame to inference, classifies the latest poses and
// publishes the overlay. The camera frame is in display orientation; the
// detector is given the unmirrored image so anatomical left and right stay
// correct, and its poses are mirrored back into display coordinates.
func (a *App) renderFrame(frame *gocv.Mat) gesture.Frame {
	mirror := a.config.Camera.Mirror
	width := float64(frame.Cols())

	enabled := a.IsEnabled()
	if enabled {
		input := gocv.NewMat()
		if mirror {
			gocv.Flip(*frame, &input, 1)
		} else {
			frame.CopyTo(&input)
		}
		a.inbox.Store(&input)
	}

	var poses []pose.Pose
	if enabled {
		poses, _, _ = a.poses.Load()
		if mirror {
			poses = pose.MirrorAll(poses, width)
		}
	}

	result := a.step(poses)

	a.renderer.Draw(frame, poses, result)
	if buf, err := overlay.Encode(*frame); err == nil {
		a.jpeg.Store(buf)
	} else {
		log.Printf("Error encoding frame: %v", err)
	}

	a.mu.RLock()
	publisher := a.publisher
	a.mu.RUnlock()
	if publisher != nil {
		if err := publisher.Publish(frameMessage{Frame: result, Enabled: enabled}); err != nil {
			log.Printf("Error publishing frame: %v", err)
		}
	}

	return result
}

// step ticks the classifier and dispatches its events. While disabled the
// loop still ticks with no poses, which clears histories and lets cooldowns
// run out without ever emitting.
func (a *App) step(poses []pose.Pose) gesture.Frame {
	result := a.classifier.Tick(a.session, poses)
	a.frames.Store(result.Number)

	for _, ev := range result.Events {
		a.handleEvent(ev)
	}
	return result
}

func (a *App) handleEvent(ev gesture.Event) {
	log.Printf("%s %s at (%.0f, %.0f) velocity %.1f, frame %d", ev.Kind, ev.Hand, ev.X, ev.Y, ev.Velocity, ev.Frame)

	a.mu.Lock()
	a.hits++
	sessionID := a.sessionID
	callbacks := append([]func(gesture.Event){}, a.callbacks...)
	a.mu.Unlock()

	for _, fn := range callbacks {
		fn(ev)
	}

	if a.config.Store == nil {
		return
	}

	a.dispatch.Add(1)
	go func() {
		defer a.dispatch.Done()
		if err := a.dispatchEvent(sessionID, ev); err != nil {
			log.Printf("Dispatch %s %s failed: %v", ev.Kind, ev.Hand, err)
		}
	}()
}

// dispatchEvent records the hit and runs the bound plugin action, if any.
func (a *App) dispatchEvent(sessionID string, ev gesture.Event) error {
	st := a.config.Store

	if sessionID != "" {
		hit := &store.Hit{
			SessionID: sessionID,
			Frame:     int(ev.Frame),
			Hand:      string(ev.Hand),
			Kind:      string(ev.Kind),
			Direction: int(ev.Direction),
			X:         ev.X,
			Y:         ev.Y,
			Velocity:  ev.Velocity,
		}
		if err := st.Hits().Record(hit); err != nil {
			return fmt.Errorf("failed to record hit: %w", err)
		}
	}

	binding, err := st.Bindings().Lookup(string(ev.Kind), string(ev.Hand))
	if err != nil {
		return fmt.Errorf("failed to look up binding: %w", err)
	}
	if binding == nil || !binding.Enabled {
		return nil
	}

	p, err := a.pluginMgr.Get(binding.PluginName)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return fmt.Errorf("plugin %q not installed", binding.PluginName)
		}
		return err
	}

	params, err := json.Marshal(hitParams{
		Frame:     ev.Frame,
		X:         ev.X,
		Y:         ev.Y,
		Velocity:  ev.Velocity,
		Direction: int(ev.Direction),
	})
	if err != nil {
		return err
	}

	resp, err := a.pluginExec.Execute(context.Background(), p, &plugin.Request{
		Action: binding.ActionName,
		Event:  string(ev.Kind),
		Hand:   string(ev.Hand),
		Config: binding.Config,
		Params: params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error)
	}
	return nil
}
