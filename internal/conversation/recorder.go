package conversation

import (
	"context"
	"fmt"
	"sync"
)

// RecordingState models the push-to-talk lifecycle.
type RecordingState int

const (
	StateIdle RecordingState = iota
	StateRecording
)

// String implements fmt.Stringer for log output.
func (s RecordingState) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "idle"
}

// CaptureDevice abstracts the audio capture resource so the controller can
// be driven in tests without real hardware.
type CaptureDevice interface {
	// Start acquires the capture resource. Failure means the device or
	// permission is unavailable.
	Start(ctx context.Context) error
	// Stop releases the capture resource.
	Stop() error
}

// UploadFunc receives the finalized audio payload after a recording stops.
type UploadFunc func(ctx context.Context, audio []byte)

// RecordingController serializes recording start/stop around a single
// capture device. At most one recording is live at a time; duplicate Start
// and Stop calls are no-ops rather than errors.
type RecordingController struct {
	mu     sync.Mutex
	state  RecordingState
	device CaptureDevice
	chunks [][]byte
	upload UploadFunc
}

// NewRecordingController wires a controller to a capture device and an
// upload sink.
func NewRecordingController(device CaptureDevice, upload UploadFunc) *RecordingController {
	return &RecordingController{device: device, upload: upload}
}

// State reports the current lifecycle state.
func (c *RecordingController) State() RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start acquires the capture device and resets the chunk buffer. Starting
// while already recording is a no-op. On capture failure the controller
// stays idle and the error wraps ErrCaptureUnavailable.
func (c *RecordingController) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRecording {
		return nil
	}

	if err := c.device.Start(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	c.chunks = c.chunks[:0]
	c.state = StateRecording
	return nil
}

// AppendChunk buffers one captured audio fragment. Chunks arriving while
// idle are dropped.
func (c *RecordingController) AppendChunk(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	c.chunks = append(c.chunks, buf)
}

// Stop finalizes the buffered chunks into one payload, releases the capture
// device, and hands the payload to the upload sink exactly once. The device
// is released before the upload is triggered so that hardware is freed on
// every exit path. Stopping while idle is a no-op.
func (c *RecordingController) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return nil
	}

	total := 0
	for _, chunk := range c.chunks {
		total += len(chunk)
	}
	payload := make([]byte, 0, total)
	for _, chunk := range c.chunks {
		payload = append(payload, chunk...)
	}
	c.chunks = nil
	c.state = StateIdle
	c.mu.Unlock()

	stopErr := c.device.Stop()

	if c.upload != nil {
		c.upload(ctx, payload)
	}
	return stopErr
}
