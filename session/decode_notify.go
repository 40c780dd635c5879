package session

// decodeNotifyReplyLegacy decodes a packed array of the simplest
// per-contact record (uin, status), terminated by a uin==0 sentinel.
// No description and no capability folding in the legacy shape.
//
// One wrinkle carried over from original_source/src/handlers.c: a
// status value that carries a description (statusAvailDescr and
// siblings) means the ENTIRE frame is a single record followed by a
// raw (not NUL-terminated, not length-prefixed) description tail,
// delivered as NotifyDescr rather than appended to the Notify array —
// the server never batches a description-bearing legacy notify with
// others in the same frame.
func decodeNotifyReplyLegacy(s *Session, _ uint32, payload []byte) (Event, error) {
	if len(payload) >= hdrNotifyLegacyRec {
		peek := newCursor(payload)
		uin, _ := peek.u32()
		status, _ := peek.u32()
		if status == statusNotAvailDescr || status == statusAvailDescr || status == statusBusyDescr {
			descr := s.transcode(EncodingCP1250, payload[hdrNotifyLegacyRec:])
			return Event{Kind: EventNotifyDescr, NotifyDescr: NotifyDescr{Entry: uin, Descr: descr}}, nil
		}
	}

	c := newCursor(payload)
	var entries []NotifyEntry
	for {
		uin, ok1 := c.u32()
		status, ok2 := c.u32()
		if !ok1 || !ok2 {
			// Truncated array with no sentinel: return what was
			// decoded so far rather than fabricate a closing record.
			break
		}
		if uin == 0 {
			break
		}
		entries = append(entries, NotifyEntry{UIN: uin, Status: status})
	}
	return Event{Kind: EventNotify, Notify: entries}, nil
}

// decodeNotifyReply60 decodes Notify60: each record carries
// ip/port/version/image_size and a single-byte-length-prefixed
// description. The 60-generation wire has no audio7 bit, so only
// audio and omnix are folded out of uin; audio7 arrived with the
// 77-generation packets (decodeNotifyReply77).
func decodeNotifyReply60(s *Session, _ uint32, payload []byte) (Event, error) {
	return decodeNotifyReplyPacked(s, payload, capAudio|capOmnix)
}

// decodeNotifyReply77 decodes Notify77: the same record shape as
// Notify60, folding all three capability bits.
func decodeNotifyReply77(s *Session, _ uint32, payload []byte) (Event, error) {
	return decodeNotifyReplyPacked(s, payload, capMask)
}

func decodeNotifyReplyPacked(s *Session, payload []byte, caps uint32) (Event, error) {
	c := newCursor(payload)
	var entries []Notify60Entry
	for {
		rawUIN, ok := c.u32()
		if !ok {
			break
		}
		if rawUIN == 0 {
			break
		}
		status, ok1 := c.u32()
		ip, ok2 := c.u32()
		port, ok3 := c.u16()
		version, ok4 := c.u32()
		imageSize, ok5 := c.u8()
		descrLen, ok6 := c.u8()
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
			break
		}
		descrBytes, ok7 := c.bytes(int(descrLen))
		if !ok7 {
			break
		}
		uin, folded := foldCapabilities(rawUIN, caps)
		entries = append(entries, Notify60Entry{
			UIN: uin, Status: status, IP: ip, Port: port,
			Version: version | folded, ImageSize: imageSize,
			Descr: s.transcode(EncodingCP1250, descrBytes),
		})
	}
	return Event{Kind: EventNotify60, Notify60: entries}, nil
}

// decodeNotifyReply80 decodes Notify80: identical shape to
// Notify60/77 except the description is u32-length-prefixed UTF-8.
func decodeNotifyReply80(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	var entries []Notify60Entry
	for {
		rawUIN, ok := c.u32()
		if !ok {
			break
		}
		if rawUIN == 0 {
			break
		}
		status, ok1 := c.u32()
		ip, ok2 := c.u32()
		port, ok3 := c.u16()
		version, ok4 := c.u32()
		imageSize, ok5 := c.u8()
		descrLen, ok6 := c.u32()
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
			break
		}
		size, fits := checkedMul(uint64(descrLen), 1)
		if !fits || size > uint64(c.remaining()) {
			break
		}
		descrBytes, ok7 := c.bytes(int(descrLen))
		if !ok7 {
			break
		}
		uin, caps := foldCapabilities(rawUIN, capMask)
		entries = append(entries, Notify60Entry{
			UIN: uin, Status: status, IP: ip, Port: port,
			Version: version | caps, ImageSize: imageSize,
			Descr: s.transcode(EncodingUTF8, descrBytes),
		})
	}
	return Event{Kind: EventNotify60, Notify60: entries}, nil
}
