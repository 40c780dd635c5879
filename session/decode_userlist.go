package session

// decodeUserlistReply handles the contact-list reply subtypes:
// GET_MORE_REPLY accumulates silently; GET_REPLY flushes the
// accumulator as the event, transferring ownership; PUT_* replies
// count down a caller-set expected-block counter and only emit once
// the last block has arrived, normalizing the subtype to PUT_REPLY.
func decodeUserlistReply(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	subtype, ok := c.u8()
	if !ok {
		return noneEvent(), nil
	}
	tail := c.rest()

	switch subtype {
	case userlistGetMoreReply:
		s.userlistAccum = append(s.userlistAccum, tail...)
		return noneEvent(), nil

	case userlistGetReply:
		s.userlistAccum = append(s.userlistAccum, tail...)
		reply := s.userlistAccum
		s.userlistAccum = nil
		return Event{Kind: EventUserlist, Userlist: UserlistEvent{Subtype: userlistGetReply, Reply: reply}}, nil

	case userlistPutMoreReply:
		s.userlistAccum = append(s.userlistAccum, tail...)
		s.decrementUserlistCountdown()
		return noneEvent(), nil

	case userlistPutReply:
		s.userlistAccum = append(s.userlistAccum, tail...)
		s.decrementUserlistCountdown()
		if s.userlistPutRemaining > 0 {
			return noneEvent(), nil
		}
		reply := s.userlistAccum
		s.userlistAccum = nil
		return Event{Kind: EventUserlist, Userlist: UserlistEvent{Subtype: userlistPutReply, Reply: reply}}, nil

	default:
		return noneEvent(), nil
	}
}

func (s *Session) decrementUserlistCountdown() {
	if s.userlistPutRemaining > 0 {
		s.userlistPutRemaining--
	}
}

// BeginUserlistPut arms the countdown of expected PUT_* blocks before
// the caller sends a chunked contact-list import request. expected
// must match how many blocks the caller intends to send.
func (s *Session) BeginUserlistPut(expected int) {
	s.userlistPutRemaining = expected
	s.userlistAccum = nil
}
