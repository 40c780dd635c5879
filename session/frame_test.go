package session

import (
	"net"
	"testing"
	"time"
)

func TestFrameWriteAndRead(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientCodec := newFrameCodec(client, baseLogger)
	serverCodec := newFrameCodec(server, baseLogger)

	done := make(chan error, 1)
	go func() {
		// writeFrame may leave the frame buffered if the pipe's reader
		// has not shown up within one poll step; keep flushing until
		// the whole frame has drained, exercising the resumable-write
		// path along the way.
		err := clientCodec.writeFrame(pktPing, []byte("hello"))
		for err == nil && clientCodec.writePending() {
			err = clientCodec.flush()
		}
		done <- err
	}()

	var frame rawFrame
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := serverCodec.pump(); err != nil && err != errWouldBlock {
			t.Fatalf("pump: %v", err)
		}
		f, ok, err := serverCodec.nextFrame()
		if err != nil {
			t.Fatalf("nextFrame: %v", err)
		}
		if ok {
			frame = f
			break
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	if frame.typ != pktPing {
		t.Fatalf("frame.typ = %#x, want %#x", frame.typ, pktPing)
	}
	if string(frame.payload) != "hello" {
		t.Fatalf("frame.payload = %q", frame.payload)
	}
}

func TestFrameCeilingRejected(t *testing.T) {
	fc := &frameCodec{log: baseLogger}
	hdr := make([]byte, frameHeaderSize)
	le32(hdr[0:4], pktPing)
	le32(hdr[4:8], frameCeiling+1)
	fc.recvBuf = hdr

	_, _, err := fc.nextFrame()
	if err == nil {
		t.Fatalf("expected a fatal error for a frame length beyond the ceiling")
	}
	var f *Failure
	if !asFailure(err, &f) || f.Kind != FailureInvalid {
		t.Fatalf("expected FailureInvalid, got %v", err)
	}
}

func asFailure(err error, target **Failure) bool {
	f, ok := err.(*Failure)
	if !ok {
		return false
	}
	*target = f
	return true
}

func TestNextFrameWaitsForWholePayload(t *testing.T) {
	fc := &frameCodec{log: baseLogger}
	hdr := make([]byte, frameHeaderSize)
	le32(hdr[0:4], pktPong)
	le32(hdr[4:8], 4)
	fc.recvBuf = append(hdr, []byte{1, 2}...) // short by 2 bytes

	_, ok, err := fc.nextFrame()
	if err != nil || ok {
		t.Fatalf("nextFrame should report not-yet-ready on a partial payload, got ok=%v err=%v", ok, err)
	}
}
