package session

import "testing"

func TestDecodeUserlistGetReplyAccumulatesThenFlushes(t *testing.T) {
	s := &Session{}

	ev, err := decodeUserlistReply(s, pktUserlistReply, append([]byte{userlistGetMoreReply}, []byte("part1-")...))
	if err != nil {
		t.Fatalf("decodeUserlistReply: %v", err)
	}
	if ev.Kind != EventNone {
		t.Fatalf("GET_MORE_REPLY should not emit an event yet, got %v", ev.Kind)
	}

	ev, err = decodeUserlistReply(s, pktUserlistReply, append([]byte{userlistGetReply}, []byte("part2")...))
	if err != nil {
		t.Fatalf("decodeUserlistReply: %v", err)
	}
	if ev.Kind != EventUserlist {
		t.Fatalf("GET_REPLY should flush the accumulator as an event")
	}
	if string(ev.Userlist.Reply) != "part1-part2" {
		t.Fatalf("reply = %q", ev.Userlist.Reply)
	}
	if s.userlistAccum != nil {
		t.Fatalf("accumulator should be cleared after flushing")
	}
}

func TestDecodeUserlistPutReplyWaitsForExpectedBlocks(t *testing.T) {
	s := &Session{}
	s.BeginUserlistPut(2)

	ev, _ := decodeUserlistReply(s, pktUserlistReply, append([]byte{userlistPutMoreReply}, []byte("a")...))
	if ev.Kind != EventNone {
		t.Fatalf("first of two expected blocks should not emit yet")
	}

	ev, _ = decodeUserlistReply(s, pktUserlistReply, append([]byte{userlistPutReply}, []byte("b")...))
	if ev.Kind != EventUserlist {
		t.Fatalf("second (last) block should flush")
	}
	if ev.Userlist.Subtype != userlistPutReply {
		t.Fatalf("subtype should normalize to PUT_REPLY")
	}
	if string(ev.Userlist.Reply) != "ab" {
		t.Fatalf("reply = %q", ev.Userlist.Reply)
	}
}
