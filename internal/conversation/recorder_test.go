package conversation_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/medmentor/backend/internal/conversation"
)

// fakeDevice counts acquisitions and releases so tests can assert the
// single-live-resource invariant.
type fakeDevice struct {
	startErr error
	starts   int
	stops    int
}

func (d *fakeDevice) Start(context.Context) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.starts++
	return nil
}

func (d *fakeDevice) Stop() error {
	d.stops++
	return nil
}

func TestRecordingControllerLifecycle(t *testing.T) {
	device := &fakeDevice{}
	var uploaded []byte
	uploads := 0

	ctrl := conversation.NewRecordingController(device, func(_ context.Context, audio []byte) {
		uploads++
		uploaded = audio
	})
	ctx := context.Background()

	if err := ctrl.Start(ctx); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if ctrl.State() != conversation.StateRecording {
		t.Fatal("expected recording state")
	}

	ctrl.AppendChunk([]byte("abc"))
	ctrl.AppendChunk([]byte("def"))

	if err := ctrl.Stop(ctx); err != nil {
		t.Fatalf("Stop err: %v", err)
	}
	if ctrl.State() != conversation.StateIdle {
		t.Fatal("expected idle state after stop")
	}
	if uploads != 1 {
		t.Fatalf("expected exactly one upload, got %d", uploads)
	}
	if !bytes.Equal(uploaded, []byte("abcdef")) {
		t.Fatalf("unexpected payload %q", uploaded)
	}
	if device.stops != 1 {
		t.Fatalf("device released %d times, want 1", device.stops)
	}
}

func TestRecordingControllerStartWhileRecording(t *testing.T) {
	device := &fakeDevice{}
	ctrl := conversation.NewRecordingController(device, nil)
	ctx := context.Background()

	if err := ctrl.Start(ctx); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	ctrl.AppendChunk([]byte("abc"))

	// Second Start must be a no-op: one live resource, buffer untouched.
	if err := ctrl.Start(ctx); err != nil {
		t.Fatalf("second Start err: %v", err)
	}
	if device.starts != 1 {
		t.Fatalf("device acquired %d times, want 1", device.starts)
	}
}

func TestRecordingControllerStopWhileIdle(t *testing.T) {
	device := &fakeDevice{}
	uploads := 0
	ctrl := conversation.NewRecordingController(device, func(context.Context, []byte) {
		uploads++
	})

	if err := ctrl.Stop(context.Background()); err != nil {
		t.Fatalf("Stop err: %v", err)
	}
	if uploads != 0 {
		t.Fatal("idle Stop must not trigger an upload")
	}
	if device.stops != 0 {
		t.Fatal("idle Stop must not release a device it never acquired")
	}
}

func TestRecordingControllerCaptureUnavailable(t *testing.T) {
	device := &fakeDevice{startErr: errors.New("permission denied")}
	ctrl := conversation.NewRecordingController(device, nil)

	err := ctrl.Start(context.Background())
	if !errors.Is(err, conversation.ErrCaptureUnavailable) {
		t.Fatalf("expected ErrCaptureUnavailable, got %v", err)
	}
	if ctrl.State() != conversation.StateIdle {
		t.Fatal("capture failure must leave the controller idle")
	}
}
