package session

import (
	"errors"
	"net"
)

// sendLogin responds to the server's challenge: it hashes the
// password, clears it if configured to, determines the IP to
// advertise, builds the generation-appropriate login packet, and
// writes it. On success it transitions to ReadingReply; a write
// failure propagates up to Watch, which closes the socket and emits
// the ConnFailed event.
func (s *Session) sendLogin(challenge uint32) error {
	hashBuf := buildHashBuf(s.cfg.Hash, s.cfg.Password, challenge)
	if s.cfg.ClearPassword {
		zeroPassword(s.cfg.Password)
		s.cfg.Password = nil
	}

	localIP := s.resolveLocalIP()

	var (
		typ  uint32
		body []byte
	)
	switch s.cfg.Gen {
	case GenerationModern:
		typ, body = s.buildLogin80(hashBuf, localIP)
	default:
		typ, body = s.buildLogin70(hashBuf, localIP)
	}

	if err := s.codec.writeFrame(typ, body); err != nil {
		return err
	}
	s.phase = PhaseReadingReply
	return nil
}

// broadcastOverride in Config.ExternalIP means "ask the connected
// socket for its local address" instead of advertising the caller
// value verbatim.
const broadcastOverride uint32 = 0xFFFFFFFF

// resolveLocalIP applies the advertised-IP rule: a caller override of
// 255.255.255.255 means "ask the socket", any other override is used
// verbatim, and a lookup failure degrades to 0 rather than failing
// the handshake.
func (s *Session) resolveLocalIP() uint32 {
	if s.cfg.ExternalIP != broadcastOverride {
		return s.cfg.ExternalIP
	}
	addr, ok := s.codec.conn.LocalAddr().(*net.TCPAddr)
	if !ok || addr.IP == nil {
		return 0
	}
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return 0
	}
	return uint32(ip4[0]) | uint32(ip4[1])<<8 | uint32(ip4[2])<<16 | uint32(ip4[3])<<24
}

// buildLogin70 encodes the legacy (7.x) login packet.
func (s *Session) buildLogin70(hashBuf [hashBufLen]byte, localIP uint32) (uint32, []byte) {
	descr := []byte(s.cfg.InitialDescr)
	body := make([]byte, hdrLogin70Fixed+len(descr))
	off := 0
	le32(body[off:], s.cfg.UIN)
	off += 4
	body[off] = s.cfg.Hash.wireByte()
	off++
	copy(body[off:], hashBuf[:])
	off += hashBufLen
	le32(body[off:], s.cfg.InitialStatus)
	off += 4
	le32(body[off:], login70Version|s.cfg.Features)
	off += 4
	body[off] = 0 // unknown1
	off++
	le32(body[off:], localIP)
	off += 4
	le16(body[off:], s.cfg.ExternalPort)
	off += 2
	extIP := s.cfg.ExternalIP
	if extIP == broadcastOverride {
		extIP = localIP
	}
	le32(body[off:], extIP)
	off += 4
	le16(body[off:], s.cfg.ExternalPort)
	off += 2
	body[off] = s.cfg.ImageSize
	off++
	body[off] = login70Dunno2
	off++
	copy(body[off:], descr)
	return pktLogin70, body
}

// buildLogin80 encodes the modern (8.0) login packet.
func (s *Session) buildLogin80(hashBuf [hashBufLen]byte, localIP uint32) (uint32, []byte) {
	version := []byte(clientVersionString)
	descr := []byte(s.cfg.InitialDescr)

	body := make([]byte, hdrLogin80Fixed+4+len(version)+4+len(descr))
	off := 0
	le32(body[off:], s.cfg.UIN)
	off += 4
	copy(body[off:], []byte("pl"))
	off += 2
	body[off] = s.cfg.Hash.wireByte()
	off++
	copy(body[off:], hashBuf[:])
	off += hashBufLen
	le32(body[off:], s.cfg.InitialStatus)
	off += 4
	le32(body[off:], login80Flags)
	off += 4
	le32(body[off:], s.cfg.Features)
	off += 4
	body[off] = s.cfg.ImageSize
	off++
	body[off] = login80Dunno2
	off++
	// localIP is accepted (matches the legacy advertisement rule) but
	// Login80 has no fixed local_ip field; its wire shape carries
	// address negotiation through the client's feature flags instead.
	_ = localIP
	le32(body[off:], uint32(len(version)))
	off += 4
	copy(body[off:], version)
	off += len(version)
	le32(body[off:], uint32(len(descr)))
	off += 4
	copy(body[off:], descr)
	return pktLogin80, body
}

// clientVersionString is sent as the Login80 version string. It names
// this library, not a particular official client, since this is a
// from-scratch reimplementation of the wire protocol.
const clientVersionString = "gg-session-engine"

// decodeWelcome handles the server's opening challenge. It is reached
// only while phase == ReadingKey (handler table gate). Both failure
// modes here are fatal: Watch closes the socket, drops the phase to
// Idle and emits the ConnFailed event.
func decodeWelcome(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	key, ok := c.u32()
	if !ok {
		return Event{}, fail(FailureInvalid, errWelcomeShort)
	}
	if err := s.sendLogin(key); err != nil {
		return Event{}, err
	}
	return noneEvent(), nil
}

var errWelcomeShort = errors.New("session: welcome shorter than its challenge")

// decodeLoginOk sets the session's reported status to the caller's
// requested initial status, falling back to the conventional AVAIL
// value only when none was configured.
func decodeLoginOk(s *Session, _ uint32, _ []byte) (Event, error) {
	s.phase = PhaseConnected
	if s.cfg.InitialStatus != 0 {
		s.status = s.cfg.InitialStatus
	} else {
		s.status = statusAvailable
	}
	return Event{Kind: EventConnSuccess}, nil
}

func decodeLoginFailed(s *Session, _ uint32, _ []byte) (Event, error) {
	s.phase = PhaseIdle
	s.codec.conn.Close()
	return Event{Kind: EventConnFailed, Failed: FailurePassword}, nil
}

// decodeIntruder handles a Disconnecting packet received while
// awaiting the login reply: the server rejected the login with an
// intruder lockout. Applied uniformly to both protocol generations,
// since only the legacy behavior is documented anywhere and there is
// no evidence modern servers signal this differently.
func decodeIntruder(s *Session, _ uint32, _ []byte) (Event, error) {
	s.phase = PhaseIdle
	s.codec.conn.Close()
	return Event{Kind: EventConnFailed, Failed: FailureIntruder}, nil
}

// statusAvailable is the conventional "available" presence value this
// wire protocol uses, and the default status reported after a login
// that did not request a specific one.
const statusAvailable uint32 = 2
