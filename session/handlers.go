package session

// decodeFn parses the payload of one packet kind into an event, given
// the session it may read (current encoding) and, for some packet
// kinds, update (phase, image queue, userlist accumulator, last pong
// time). It returns a fatal error only for tier-3
// failures (spec §7); tier-1 discards are expressed as EventNone with
// a nil error.
type decodeFn func(s *Session, typ uint32, payload []byte) (Event, error)

// HandlerRow is the declarative {type, required-state, minimum-length,
// decoder} quadruple of spec §2/§3. The table built from these rows is
// immutable after init, matching the teacher's declarative
// p2p.Protocol registration (eth/echoproto.go) generalized with a
// phase gate.
type HandlerRow struct {
	Type   uint32
	Phases []Phase // empty means "any phase"
	MinLen int
	Decode decodeFn
}

func (r HandlerRow) matchesPhase(p Phase) bool {
	if len(r.Phases) == 0 {
		return true
	}
	for _, ph := range r.Phases {
		if ph == p {
			return true
		}
	}
	return false
}

// handlerTable is walked in declaration order; the first row whose
// type, phase and minimum length all match wins (spec §4.2).
var handlerTable = []HandlerRow{
	// MinLen stays 0 so a welcome shorter than its challenge reaches
	// the decoder and fails fatally (spec §7 tier 3) instead of being
	// silently discarded by the length gate.
	{Type: pktWelcome, Phases: []Phase{PhaseReadingKey}, MinLen: 0, Decode: decodeWelcome},

	{Type: pktLoginOk, Phases: []Phase{PhaseReadingReply}, MinLen: 0, Decode: decodeLoginOk},
	{Type: pktLoginOk80, Phases: []Phase{PhaseReadingReply}, MinLen: 0, Decode: decodeLoginOk},
	{Type: pktNeedEmail, Phases: []Phase{PhaseReadingReply}, MinLen: 0, Decode: decodeLoginOk},
	{Type: pktLoginFailed, Phases: []Phase{PhaseReadingReply}, MinLen: 0, Decode: decodeLoginFailed},
	{Type: pktDisconnecting, Phases: []Phase{PhaseReadingReply}, MinLen: 0, Decode: decodeIntruder},

	{Type: pktDisconnecting, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodeDisconnecting},
	{Type: pktDisconnectAck, Phases: []Phase{PhaseDisconnecting}, MinLen: 0, Decode: decodeDisconnectAck},

	{Type: pktRecvMsg, Phases: []Phase{PhaseConnected}, MinLen: hdrRecvMsg, Decode: decodeRecvMsg},
	{Type: pktRecvMsg80, Phases: []Phase{PhaseConnected}, MinLen: hdrRecvMsg80, Decode: decodeRecvMsg80},
	{Type: pktSendMsgAck, Phases: []Phase{PhaseConnected}, MinLen: hdrSendMsgAck, Decode: decodeSendMsgAck},
	{Type: pktPong, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodePong},

	{Type: pktStatus, Phases: []Phase{PhaseConnected}, MinLen: hdrStatus, Decode: decodeStatus},
	{Type: pktStatus60, Phases: []Phase{PhaseConnected}, MinLen: hdrStatus60Fixed, Decode: decodeStatus60},
	{Type: pktStatus77, Phases: []Phase{PhaseConnected}, MinLen: hdrStatus60Fixed, Decode: decodeStatus60},

	{Type: pktNotifyReply, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodeNotifyReplyLegacy},
	{Type: pktNotifyReply60, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodeNotifyReply60},
	{Type: pktNotifyReply77, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodeNotifyReply77},
	{Type: pktNotifyReply80, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodeNotifyReply80},

	{Type: pktXMLEvent, Phases: []Phase{PhaseConnected}, MinLen: 0, Decode: decodeXMLEvent},
	{Type: pktUserlistReply, Phases: []Phase{PhaseConnected}, MinLen: hdrUserlistReply, Decode: decodeUserlistReply},
}

// dispatch walks handlerTable for the first row matching frame.typ and
// the session's current phase and minimum length (spec §4.2). A type
// match with a phase or length mismatch is a silent, logged discard —
// the remote may simply be sending something that became stale after
// a phase change. An unmatched type is ignored without logging (most
// servers send a handful of packet kinds this client never asked to
// be told about).
func (s *Session) dispatch(frame rawFrame) (Event, error) {
	if s.cfg.RawMode {
		cp := make([]byte, len(frame.payload))
		copy(cp, frame.payload)
		return Event{Kind: EventRawPacket, Raw: RawPacket{Type: frame.typ, Bytes: cp}}, nil
	}

	switch frame.typ {
	case pktPubdir50Reply, pktDCC7IdReply, pktDCC7New, pktDCC7Accept, pktDCC7Reject:
		// Delegated to auxiliary subsystems outside the core; only
		// meaningful once logged in.
		if s.phase == PhaseConnected && s.cfg.AuxDecode != nil {
			return s.cfg.AuxDecode(frame.typ, frame.payload)
		}
		return noneEvent(), nil
	}

	matchedType := false
	for _, row := range handlerTable {
		if row.Type != frame.typ {
			continue
		}
		matchedType = true
		if !row.matchesPhase(s.phase) {
			continue
		}
		if len(frame.payload) < row.MinLen {
			continue
		}
		return row.Decode(s, frame.typ, frame.payload)
	}
	if matchedType {
		s.log.Debug().Uint32("type", frame.typ).Str("phase", s.phase.String()).Msg("discarding frame: phase or length mismatch")
	}
	return noneEvent(), nil
}
