package session

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Session is a process-addressable handle bound to one TCP connection
// (spec §3). It is mutated only by its own methods — Watch, in
// response to inbound frames and timer fires, and the outbound-request
// calls (SetStatus, Logoff, BeginUserlistPut, Free) — with no internal
// locking, matching
// spec §5's single-threaded cooperative contract, the same way the
// teacher's rlpx struct assumes single-goroutine ownership of its fd.
type Session struct {
	cfg   *Config
	phase Phase
	codec *frameCodec
	log   zerolog.Logger

	status   uint32
	lastPong time.Time

	deadline time.Time // zero means Config.Timeout == 0 (disabled)

	imageQueue map[uint32]*imageEntry

	userlistAccum        []byte
	userlistPutRemaining int
}

// Check is the readiness bitmask Watch's caller should poll for next
// (spec §6's session.check): a session always wants read readiness,
// and write readiness as well while an outbound frame is still
// buffered.
type Check struct {
	Read  bool
	Write bool
}

// Open binds a session to an already-connected socket and begins the
// login handshake's first phase: awaiting the server's welcome
// challenge. It mirrors the teacher's NewRLPX(fd net.Conn, ...): the
// dial itself (resolving a hostname to an address) is a distinct,
// resolver-driven concern handled by Dial, not by the core engine
// (spec §1: name resolution is an explicit external collaborator).
func Open(conn net.Conn, cfg *Config) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: nil Config")
	}
	log := zerolog.Nop()
	s := &Session{
		cfg:   cfg,
		phase: PhaseReadingKey,
		codec: newFrameCodec(conn, log),
		log:   log,
	}
	s.log = newSessionLogger(s)
	s.codec.log = s.subLogger("frame")
	s.armTimeout()
	s.log.Info().Msg("session opened, awaiting welcome challenge")
	return s, nil
}

// Dial connects to hostname:port with a blocking net.Dial (so the
// lookup goes through Go's own resolver) and opens a session against
// the result. The configured ResolverKind, falling back to the
// process-wide default, is consulted only to reject ResolverCustom.
// The session never enters the Resolving*/Connecting* phases: Dial
// does its work before the session exists, and the returned session
// starts in ReadingKey. Callers that already hold a connection —
// including tests, which hand Open a net.Pipe — skip Dial entirely.
func Dial(hostname string, port uint16, cfg *Config) (*Session, error) {
	r, kind := resolveConfigured(cfg)
	if kind == ResolverCustom {
		if r == nil {
			return nil, fail(FailureResolving, errNoCustomResolver)
		}
		// A custom resolver's fd is meant to be folded into the
		// caller's own poll loop (resolver.go's contract), which Dial's
		// single blocking call cannot do justice to; callers configured
		// for ResolverCustom should drive CustomResolver.Start and
		// ParseResolverPipe themselves and call Open once connected.
		return nil, errors.New("session: Dial does not support ResolverCustom; drive CustomResolver directly and call Open")
	}

	addr := net.JoinHostPort(hostname, strconv.Itoa(int(port)))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fail(FailureConnecting, err)
	}
	return Open(conn, cfg)
}

func (s *Session) armTimeout() {
	if s.cfg.Timeout == 0 {
		s.deadline = time.Time{}
		return
	}
	s.deadline = time.Now().Add(time.Duration(s.cfg.Timeout) * time.Second)
}

// timedOut reports whether the connect/login phase deadline has
// passed. Only meaningful before phase reaches Connected (spec §6).
func (s *Session) timedOut() bool {
	if s.deadline.IsZero() || s.phase == PhaseConnected || s.phase == PhaseDisconnecting || s.phase == PhaseIdle {
		return false
	}
	return time.Now().After(s.deadline)
}

// Phase reports the session's current top-level state.
func (s *Session) Phase() Phase { return s.phase }

// Status reports the last presence value the session believes is in
// effect (set on LoginOk and every successful SetStatus call).
func (s *Session) Status() uint32 { return s.status }

// LastPong reports when the session last saw an inbound Pong.
func (s *Session) LastPong() time.Time { return s.lastPong }

// Check reports what readiness the caller's poll loop should wait on
// next (spec §6's session.check): read readiness always, plus write
// readiness while a frame is still buffered.
func (s *Session) Check() Check {
	return Check{Read: true, Write: s.codec.writePending()}
}

// FD exposes the underlying connection for callers that need to
// register it with their own poller (spec §6's session.fd). The
// engine closes it on a fatal failure, on a LoginFailed or intruder
// rejection, on DisconnectAck, and from Free.
func (s *Session) FD() net.Conn { return s.codec.conn }

// Watch performs one poll step (spec §5/§6): a single read attempt
// bounded to a millisecond, then dispatch of the whole frames in the
// receive buffer until one yields an event. It returns (nil, nil)
// when there is nothing to report yet (tier-1 discards included), a
// populated *Event for the first decoded event, or — once the engine
// has fatally failed and torn itself down — a ConnFailed event in the
// connect/login phases and a *Failure in the Connected phase.
//
// This is the cooperative heart of the engine: unlike the teacher's
// rlpx, which reads a full message with a blocking io.ReadFull inside
// a dedicated goroutine, Watch never parks the caller and carries no
// internal goroutines at all (spec §5's "no implicit threads").
func (s *Session) Watch() (*Event, error) {
	if s.phase == PhaseIdle {
		return nil, nil
	}

	if err := s.codec.flush(); err != nil {
		return s.fatal(err)
	}

	if s.timedOut() {
		return s.fatal(fail(FailureTimeout, errors.New("connect/login phase deadline exceeded")))
	}

	// A would-block read is not the end of the step: whole frames left
	// buffered by an earlier read are still dispatched below.
	if err := s.codec.pump(); err != nil && err != errWouldBlock {
		return s.fatal(err)
	}

	for {
		frame, ok, err := s.codec.nextFrame()
		if err != nil {
			return s.fatal(err)
		}
		if !ok {
			return nil, nil
		}
		ev, err := s.dispatch(frame)
		if err != nil {
			return s.fatal(err)
		}
		if ev.Kind == EventNone {
			continue
		}
		return &ev, nil
	}
}

// fatal implements spec §7 tier 3: the socket is closed, phase drops
// to Idle, and the error is surfaced to the caller. Connect/login
// phase failures are reported as a ConnFailed event instead of an
// error, per spec §7's "fatal: ... either emits a ConnFailed (for
// connection/login phases) or returns an error (Connected phase)".
func (s *Session) fatal(err error) (*Event, error) {
	wasConnected := s.phase == PhaseConnected
	s.phase = PhaseIdle
	s.codec.conn.Close()

	var f *Failure
	if !errors.As(err, &f) {
		f = fail(FailureReading, err)
	}
	s.log.Warn().Str("kind", f.Kind.String()).Err(f.Cause).Msg("session failed")

	if wasConnected {
		return nil, f
	}
	return &Event{Kind: EventConnFailed, Failed: f.Kind}, nil
}

// SendMsg queues an outbound message (spec §4.4's RecvMsg counterpart
// on the send side). It is intentionally minimal: callers needing the
// options-tail (conference recipients, rich text, image offers) build
// that tail themselves and pass it as extra.
func (s *Session) SendMsg(recipient uint32, seq uint32, class MsgClass, body []byte, extra []byte) error {
	if s.phase != PhaseConnected {
		return errors.New("session: SendMsg requires phase Connected")
	}
	buf := make([]byte, 4+4+4+len(body)+1+len(extra))
	off := 0
	le32(buf[off:], recipient)
	off += 4
	le32(buf[off:], seq)
	off += 4
	le32(buf[off:], uint32(class))
	off += 4
	copy(buf[off:], body)
	off += len(body)
	buf[off] = 0
	off++
	copy(buf[off:], extra)
	return s.codec.writeFrame(pktSendMsg, buf)
}

// SetStatus announces a new presence value, with an optional
// description carried after the fixed field.
func (s *Session) SetStatus(status uint32, descr string) error {
	if s.phase != PhaseConnected {
		return errors.New("session: SetStatus requires phase Connected")
	}
	buf := make([]byte, 4+len(descr))
	le32(buf, status)
	copy(buf[4:], descr)
	if err := s.codec.writeFrame(pktNewStatus, buf); err != nil {
		return err
	}
	s.status = status
	return nil
}

// Logoff asks the server to end the session cleanly: the session
// enters Disconnecting and waits for the server's DisconnectAck,
// which Watch surfaces before dropping the phase to Idle.
func (s *Session) Logoff() error {
	if s.phase != PhaseConnected {
		return errors.New("session: Logoff requires phase Connected")
	}
	if err := s.codec.writeFrame(pktDisconnecting, nil); err != nil {
		return err
	}
	s.phase = PhaseDisconnecting
	return nil
}

// SendPing keeps the connection alive (spec §4.5's periodic-ping
// collaborator). The caller's own timer decides when to call it.
func (s *Session) SendPing() error {
	if s.phase != PhaseConnected {
		return errors.New("session: SendPing requires phase Connected")
	}
	return s.codec.writeFrame(pktPing, nil)
}

// Free tears the session down unconditionally, releasing owned
// buffers (spec §6: "all owned buffers ... are released during
// free") and closing the socket. Safe to call more than once.
func (s *Session) Free() {
	if s.phase != PhaseIdle {
		s.codec.conn.Close()
		s.phase = PhaseIdle
	}
	s.imageQueue = nil
	s.userlistAccum = nil
	if s.cfg != nil {
		zeroPassword(s.cfg.Password)
	}
}

