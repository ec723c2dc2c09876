package server

import (
	"fmt"
	"net/http"
	"time"
)

const defaultStreamInterval = time.Second / 30

// FrameSource returns the most recent encoded frame and its sequence number.
// *latest.Cell[[]byte] satisfies it.
type FrameSource interface {
	Load() ([]byte, uint64, bool)
}

// StreamHandler serves MJPEG frames from a FrameSource.
type StreamHandler struct {
	frames   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler polling frames every interval.
func NewStreamHandler(frames FrameSource, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return &StreamHandler{frames: frames, interval: interval}
}

// ServeHTTP streams MJPEG frames until the client goes away.
// A frame is written only when its sequence number changes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		if buf, seq, ok := h.frames.Load(); ok && seq != last {
			last = seq
			if err := writePart(w, buf); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
