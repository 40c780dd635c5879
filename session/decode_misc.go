package session

import "time"

// decodeDisconnecting handles the Connected-phase Disconnecting
// warning (spec §4.5): the server is about to drop the connection but
// has not yet done so.
func decodeDisconnecting(s *Session, _ uint32, _ []byte) (Event, error) {
	return Event{Kind: EventDisconnect}, nil
}

// decodeDisconnectAck completes the teardown the server previously
// warned about: the session drops back to Idle and the socket is
// released.
func decodeDisconnectAck(s *Session, _ uint32, _ []byte) (Event, error) {
	s.phase = PhaseIdle
	s.codec.conn.Close()
	return Event{Kind: EventDisconnectAck}, nil
}

func decodeSendMsgAck(s *Session, _ uint32, payload []byte) (Event, error) {
	c := newCursor(payload)
	status, _ := c.u32()
	recipient, _ := c.u32()
	seq, _ := c.u32()
	return Event{Kind: EventAck, Ack: Ack{Status: status, Recipient: recipient, Seq: seq}}, nil
}

func decodePong(s *Session, _ uint32, _ []byte) (Event, error) {
	s.lastPong = time.Now()
	return Event{Kind: EventPong}, nil
}

func decodeXMLEvent(s *Session, _ uint32, payload []byte) (Event, error) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return Event{Kind: EventXMLEvent, XML: XMLEvent{Data: string(cp)}}, nil
}
