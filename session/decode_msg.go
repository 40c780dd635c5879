package session

import "time"

// msgExtra accumulates the option-tail fields that decorate a Msg
// event.
type msgExtra struct {
	recipients []uint32
	formats    []byte
}

// parseOptions walks the TLV-like options tail following a message
// body. It returns either:
//   - extra, nil, false: zero or more conference/rich-text options
//     were folded into extra, to be attached to a Msg event;
//   - nil, override, false: an image-request or image-reply option
//     was seen, and override is the event to emit INSTEAD of Msg
//     (only one event leaves a decoder per frame);
//   - _, _, true: no event leaves this frame, either because the
//     options were malformed in a way that requires discarding it
//     (e.g. an overflowing recipient count) or because an image
//     fragment was absorbed into an in-flight reassembly.
//
// An unrecognized tag stops parsing rather than erroring; image tags
// halt option parsing even on success, which parseOptions implements
// by returning immediately once one is seen.
func parseOptions(s *Session, sender uint32, tail []byte) (extra msgExtra, override *Event, discard bool) {
	c := newCursor(tail)
	for {
		tag, ok := c.u8()
		if !ok {
			return extra, nil, false
		}
		switch tag {
		case optConference:
			count, ok := c.u32()
			if !ok {
				return extra, nil, false
			}
			if count > 0xFFFF {
				return extra, nil, true
			}
			size, fits := checkedMul(uint64(count), 4)
			if !fits || size > uint64(c.remaining()) {
				return extra, nil, true
			}
			recips := make([]uint32, 0, count)
			for i := uint32(0); i < count; i++ {
				v, ok := c.u32()
				if !ok {
					return extra, nil, true
				}
				recips = append(recips, v)
			}
			extra.recipients = recips

		case optRichText:
			length, ok := c.u16()
			if !ok {
				return extra, nil, false
			}
			b, ok := c.bytes(int(length))
			if !ok {
				return extra, nil, true
			}
			cp := make([]byte, len(b))
			copy(cp, b)
			extra.formats = cp

		case optImageReq:
			size, ok1 := c.u32()
			crc, ok2 := c.u32()
			if !ok1 || !ok2 {
				return extra, nil, false
			}
			ev := Event{Kind: EventImageRequest, ImageRequest: ImageRequestEvent{Sender: sender, Size: size, CRC32: crc}}
			return msgExtra{}, &ev, false

		case optImageReply, optImageCont:
			ev, ready := s.feedImageFragment(sender, tag == optImageReply, c.rest())
			if !ready {
				// Fragment absorbed into the in-flight reassembly;
				// nothing to deliver yet.
				return msgExtra{}, nil, true
			}
			return msgExtra{}, &ev, false

		default:
			return extra, nil, false
		}
	}
}

// decodeRecvMsg handles the legacy (pre-8.0) message packet.
func decodeRecvMsg(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	sender, _ := c.u32()
	seq, _ := c.u32()
	t, _ := c.u32()
	class, _ := c.u32()

	// Known server-side probe: silently discard.
	if seq == 0 && class == 0 {
		return noneEvent(), nil
	}

	body, ok := c.cstring()
	if !ok {
		return noneEvent(), nil
	}

	if len(body) == 1 && body[0] == 0x02 {
		return Event{Kind: EventMsg, Msg: Msg{
			Sender: sender, Seq: seq, Time: time.Unix(int64(t), 0),
			Class: MsgClass(class), Body: body, DCCRequest: true,
		}}, nil
	}

	extra, override, discard := parseOptions(s, sender, c.rest())
	if discard {
		return noneEvent(), nil
	}
	if override != nil {
		return *override, nil
	}

	decoded := s.transcode(EncodingCP1250, []byte(body))
	return Event{Kind: EventMsg, Msg: Msg{
		Sender: sender, Seq: seq, Time: time.Unix(int64(t), 0),
		Class: MsgClass(class), Body: decoded,
		Recipients: extra.recipients, Formats: extra.formats,
	}}, nil
}

// decodeRecvMsg80 handles the modern message packet, which carries
// explicit offsets for the plain and (optional) XHTML bodies, and
// requires encoding conversion.
func decodeRecvMsg80(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	sender, _ := c.u32()
	seq, _ := c.u32()
	t, _ := c.u32()
	class, _ := c.u32()
	offsetPlain, _ := c.u32()
	offsetAttr, _ := c.u32()

	const header = hdrRecvMsg80
	if offsetPlain < header || int(offsetPlain) >= len(payload) {
		return noneEvent(), nil
	}
	// An attr offset that is out of range (or equal to the frame
	// length) degrades to "no attrs": the message body is still
	// delivered (tier-2 local recovery).
	if offsetAttr != 0 && (offsetAttr < header || int(offsetAttr) >= len(payload)) {
		offsetAttr = 0
	}

	var xhtml string
	if offsetPlain > header {
		xb, ok := nulTerminated(payload[header:offsetPlain])
		if !ok {
			return noneEvent(), nil
		}
		xhtml = s.transcode(EncodingUTF8, xb)
	}

	plainEnd := len(payload)
	if offsetAttr != 0 {
		plainEnd = int(offsetAttr)
	}
	plainRaw, ok := nulTerminated(payload[offsetPlain:plainEnd])
	if !ok {
		return noneEvent(), nil
	}

	var plain string
	if s.cfg.Encoding == EncodingCP1250 {
		plain = string(plainRaw)
	} else if xhtml != "" {
		plain = s.stripHTML(xhtml)
	} else {
		plain = s.transcode(EncodingCP1250, plainRaw)
	}

	// The attr tail is the same TLV options stream legacy RecvMsg
	// carries after its body NUL: conference recipients, rich-text
	// attributes and image request/reply fragments all apply to the
	// modern packet too.
	var extra msgExtra
	if offsetAttr != 0 {
		var override *Event
		var discard bool
		extra, override, discard = parseOptions(s, sender, payload[offsetAttr:])
		if discard {
			return noneEvent(), nil
		}
		if override != nil {
			return *override, nil
		}
	}

	return Event{Kind: EventMsg, Msg: Msg{
		Sender: sender, Seq: seq, Time: time.Unix(int64(t), 0),
		Class: MsgClass(class), Body: plain, XHTML: xhtml,
		Recipients: extra.recipients, Formats: extra.formats,
	}}, nil
}

// nulTerminated requires b to contain a NUL and returns the bytes
// before it.
func nulTerminated(b []byte) ([]byte, bool) {
	for i, v := range b {
		if v == 0 {
			return b[:i], true
		}
	}
	return nil, false
}

// transcode applies the session's configured Transcoder, defaulting
// to identity if none was supplied (or, in tests that exercise a
// decoder directly against a bare Session, if no Config was attached
// at all).
func (s *Session) transcode(wireEncoding Encoding, b []byte) string {
	if s.cfg == nil || s.cfg.Transcoder.ToSession == nil {
		return string(b)
	}
	return s.cfg.Transcoder.ToSession(wireEncoding, b)
}

// stripHTML applies the session's configured StripHTML transform,
// defaulting to the identity (the raw XHTML string) if none was
// supplied.
func (s *Session) stripHTML(xhtml string) string {
	if s.cfg == nil || s.cfg.Transcoder.StripHTML == nil {
		return xhtml
	}
	return s.cfg.Transcoder.StripHTML(xhtml)
}
