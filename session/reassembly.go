package session

// imageEntry is an in-flight image reception, keyed implicitly by the
// map key in Session.imageQueue (sender). Continuation fragments on
// the wire carry no header to re-match size/crc against, so — like
// the original client this protocol was distilled from — a session
// tracks at most one in-flight reception per sender and continuation
// fragments are matched by sender alone.
type imageEntry struct {
	size     uint32
	crc32    uint32
	received uint32
	bytes    []byte
	filename string
}

// feedImageFragment absorbs one image fragment, first or continuation.
// ready is true when a complete (possibly zero-byte) ImageReplyEvent
// is available in ev; false means the fragment was absorbed into an
// in-flight reception and nothing should be delivered yet.
func (s *Session) feedImageFragment(sender uint32, first bool, tail []byte) (ev Event, ready bool) {
	if first {
		c := newCursor(tail)
		size, ok1 := c.u32()
		crc, ok2 := c.u32()
		if !ok1 || !ok2 {
			return Event{}, false
		}
		filename, _ := c.cstring() // missing terminator degrades to empty filename (tier 2 local recovery)
		data := c.rest()

		if size == 0 {
			return Event{Kind: EventImageReply, ImageReply: ImageReplyEvent{
				Sender: sender, CRC32: crc, Filename: filename, Bytes: []byte{},
			}}, true
		}

		entry := &imageEntry{size: size, crc32: crc, filename: filename, bytes: make([]byte, 0, size)}
		s.appendImageData(entry, data)
		if entry.received >= entry.size {
			return s.finishImage(sender, entry), true
		}
		if s.imageQueue == nil {
			s.imageQueue = make(map[uint32]*imageEntry)
		}
		s.imageQueue[sender] = entry
		return Event{}, false
	}

	entry := s.imageQueue[sender]
	if entry == nil {
		return Event{}, false
	}
	s.appendImageData(entry, tail)
	if entry.received >= entry.size {
		delete(s.imageQueue, sender)
		return s.finishImage(sender, entry), true
	}
	return Event{}, false
}

// appendImageData truncates the incoming chunk so the entry's
// received count never exceeds its declared size.
func (s *Session) appendImageData(entry *imageEntry, data []byte) {
	room := entry.size - entry.received
	if uint32(len(data)) > room {
		data = data[:room]
	}
	entry.bytes = append(entry.bytes, data...)
	entry.received += uint32(len(data))
}

func (s *Session) finishImage(sender uint32, entry *imageEntry) Event {
	return Event{Kind: EventImageReply, ImageReply: ImageReplyEvent{
		Sender: sender, Size: entry.size, CRC32: entry.crc32,
		Filename: entry.filename, Bytes: entry.bytes,
	}}
}
