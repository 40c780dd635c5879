package session

import (
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// frameHeaderSize is the common 8-byte header: a u32 type followed by
// a u32 length, both little-endian.
const frameHeaderSize = 8

// rawFrame is one whole inbound frame handed up by frameCodec to the
// dispatcher.
type rawFrame struct {
	typ     uint32
	payload []byte
}

// pollDeadline bounds a single read/write attempt so a normally
// blocking net.Conn behaves like one poll step: if the socket is
// ready the call completes at once, otherwise it gives up after a
// millisecond with a timeout error instead of parking the caller.
// The deadline has to lie in the future — Go fails deadline-expired
// I/O without attempting the syscall at all, so a deadline of "now"
// would never move a byte even on a ready socket.
func pollDeadline() time.Time {
	return time.Now().Add(time.Millisecond)
}

// frameCodec owns the receive buffer and frame read/write for one
// connection. It performs no blocking I/O of its own: every public
// method here either completes immediately or reports that the
// caller should wait for the next readiness notification.
type frameCodec struct {
	conn net.Conn
	log  zerolog.Logger

	recvBuf []byte // accumulated partial frame bytes

	sendPending []byte // unwritten tail of the frame currently being sent
}

func newFrameCodec(conn net.Conn, log zerolog.Logger) *frameCodec {
	return &frameCodec{conn: conn, log: log}
}

// errWouldBlock is not a Failure: it means "no more work possible
// right now", the normal outcome of most Watch calls.
var errWouldBlock = errors.New("session: would block")

// pump performs at most one non-blocking read, appending whatever
// arrived to the receive buffer. It returns errWouldBlock when there
// was nothing to read yet, io.EOF (wrapped) when the peer closed the
// connection, or a *Failure for any other I/O error.
func (fc *frameCodec) pump() error {
	if err := fc.conn.SetReadDeadline(pollDeadline()); err != nil {
		return fail(FailureReading, err)
	}
	buf := make([]byte, 16*1024)
	n, err := fc.conn.Read(buf)
	if n > 0 {
		fc.recvBuf = append(fc.recvBuf, buf[:n]...)
	}
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if n > 0 {
				return nil
			}
			return errWouldBlock
		}
		return fail(FailureReading, err)
	}
	if n == 0 {
		return errWouldBlock
	}
	return nil
}

// nextFrame extracts one whole frame from the receive buffer, if one
// has fully arrived. ok is false when more bytes are needed; the
// caller should call pump again and retry.
func (fc *frameCodec) nextFrame() (frame rawFrame, ok bool, err error) {
	if len(fc.recvBuf) < frameHeaderSize {
		return rawFrame{}, false, nil
	}
	hc := newCursor(fc.recvBuf[:frameHeaderSize])
	typ, _ := hc.u32()
	length, _ := hc.u32()
	if length > frameCeiling {
		fc.log.Warn().Uint32("type", typ).Uint32("length", length).Msg("frame length exceeds ceiling")
		return rawFrame{}, false, fail(FailureInvalid, errors.New("frame length exceeds ceiling"))
	}
	total := frameHeaderSize + int(length)
	if len(fc.recvBuf) < total {
		return rawFrame{}, false, nil
	}
	payload := make([]byte, length)
	copy(payload, fc.recvBuf[frameHeaderSize:total])
	// Shift the remainder down rather than reslicing from an
	// ever-growing backing array, so a long-lived connection
	// doesn't leak memory across many small frames.
	remaining := len(fc.recvBuf) - total
	copy(fc.recvBuf, fc.recvBuf[total:])
	fc.recvBuf = fc.recvBuf[:remaining]
	return rawFrame{typ: typ, payload: payload}, true, nil
}

// writeFrame serializes and writes a frame. If the write is short it
// buffers the remainder for flush to finish on the next writable
// notification.
func (fc *frameCodec) writeFrame(typ uint32, payload []byte) error {
	if len(fc.sendPending) > 0 {
		if err := fc.flush(); err != nil {
			return err
		}
		if len(fc.sendPending) > 0 {
			return fail(FailureWriting, errors.New("previous write still pending"))
		}
	}
	buf := make([]byte, frameHeaderSize+len(payload))
	le32(buf[0:4], typ)
	le32(buf[4:8], uint32(len(payload)))
	copy(buf[frameHeaderSize:], payload)
	fc.sendPending = buf
	return fc.flush()
}

// flush attempts to write out any buffered outbound bytes. Returns
// nil whether or not the buffer fully drained; check
// fc.sendPending to see if more writable readiness is needed.
func (fc *frameCodec) flush() error {
	for len(fc.sendPending) > 0 {
		if err := fc.conn.SetWriteDeadline(pollDeadline()); err != nil {
			return fail(FailureWriting, err)
		}
		n, err := fc.conn.Write(fc.sendPending)
		if n > 0 {
			fc.sendPending = fc.sendPending[n:]
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return fail(FailureWriting, err)
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}

// writePending reports whether an unfinished outbound write is still
// buffered (used by Session to decide whether it needs writable
// readiness).
func (fc *frameCodec) writePending() bool {
	return len(fc.sendPending) > 0
}
