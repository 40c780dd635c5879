package session

import "time"

// decodeStatus handles the legacy (plain) Status packet: no
// capability folding, tail is a plain description.
func decodeStatus(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	uin, _ := c.u32()
	status, _ := c.u32()
	descr := s.transcode(EncodingCP1250, c.rest())
	return Event{Kind: EventStatus, Status: Status{UIN: uin, Status: status, Descr: descr}}, nil
}

// foldCapabilities splits the capability bits folded into a legacy
// uin field and returns the bare uin plus the bits selected by mask,
// ready to be ORed into a reported version/capability field instead
// of discarded. The mask varies by packet generation: the audio7 bit
// exists only on the 77-generation wire types, so NotifyReply60 folds
// audio|omnix while NotifyReply77 and the shared Status60/77 path
// fold all three. The bare uin always discards the whole top byte,
// not just the masked capability bits
// (original_source/src/handlers.c masks unconditionally with
// `uin & 0x00ffffff`).
func foldCapabilities(rawUIN, mask uint32) (uin uint32, caps uint32) {
	return rawUIN & 0x00ffffff, rawUIN & mask
}

// decodeStatus60 handles Status60/Status77: capability bits are
// folded out of uin and into version, and a trailing 4-byte UNIX
// time is recognized in the description tail when present.
func decodeStatus60(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	rawUIN, _ := c.u32()
	status, _ := c.u32()
	ip, _ := c.u32()
	port, _ := c.u16()
	version, _ := c.u32()
	imageSize, _ := c.u8()

	uin, caps := foldCapabilities(rawUIN, capMask)
	version |= caps

	tail := c.rest()
	descrBytes, when, hasTime := splitTrailingTime(tail)
	descr := s.transcode(EncodingCP1250, descrBytes)

	return Event{Kind: EventStatus60, Status60: Status60{
		UIN: uin, Status: status, IP: ip, Port: port, Version: version,
		ImageSize: imageSize, Descr: descr, Time: when, HasTime: hasTime,
	}}, nil
}

// splitTrailingTime recognizes the Status60/77 trailing-time sentinel
// (the Notify decoders do not look for one): a description tail at
// least 5 bytes long
// whose fifth-from-last byte is zero carries a little-endian UNIX
// timestamp in its last 4 bytes.
func splitTrailingTime(tail []byte) (descr []byte, when time.Time, has bool) {
	if len(tail) >= 5 && tail[len(tail)-5] == 0 {
		c := newCursor(tail[len(tail)-4:])
		t, _ := c.u32()
		return tail[:len(tail)-5], time.Unix(int64(t), 0), true
	}
	return tail, time.Time{}, false
}
