package session

import "testing"

func TestFoldCapabilities(t *testing.T) {
	raw := uint32(123) | capAudio | capOmnix
	uin, caps := foldCapabilities(raw, capMask)
	if uin != 123 {
		t.Fatalf("uin = %d, want 123", uin)
	}
	if caps != capAudio|capOmnix {
		t.Fatalf("caps = %#x, want %#x", caps, capAudio|capOmnix)
	}
}

func TestFoldCapabilitiesMaskSelectsBits(t *testing.T) {
	raw := uint32(9) | capAudio | capAudio7
	uin, caps := foldCapabilities(raw, capAudio|capOmnix)
	if uin != 9 {
		t.Fatalf("uin = %d, want 9 (whole top byte stripped)", uin)
	}
	if caps != capAudio {
		t.Fatalf("caps = %#x, want only audio: an unmasked audio7 bit must not leak through", caps)
	}
}

func TestDecodeStatus60FoldsCapabilitiesAndTrailingTime(t *testing.T) {
	s := &Session{}
	payload := make([]byte, hdrStatus60Fixed+3+1+4)
	le32(payload[0:4], 555|capAudio7)
	le32(payload[4:8], 2)
	le32(payload[8:12], 0x0100007f)
	le16(payload[12:14], 1550)
	le32(payload[14:18], 0x00020000)
	payload[18] = 96
	// tail: "abc", then a zero marker byte, then the 4-byte LE time
	copy(payload[19:22], []byte("abc"))
	payload[22] = 0
	le32(payload[23:27], 1700000000)

	ev, err := decodeStatus60(s, pktStatus60, payload)
	if err != nil {
		t.Fatalf("decodeStatus60: %v", err)
	}
	st := ev.Status60
	if st.UIN != 555 {
		t.Fatalf("uin = %d, want 555", st.UIN)
	}
	if st.Version&capAudio7 == 0 {
		t.Fatalf("capability bit not folded into version")
	}
	if !st.HasTime {
		t.Fatalf("expected a trailing timestamp to be recognized")
	}
	if st.Time.Unix() != 1700000000 {
		t.Fatalf("time = %v", st.Time)
	}
	if st.Descr != "abc" {
		t.Fatalf("descr = %q, want %q", st.Descr, "abc")
	}
}

func TestSplitTrailingTimeAbsent(t *testing.T) {
	descr, _, has := splitTrailingTime([]byte("just a description"))
	if has {
		t.Fatalf("should not find a timestamp in plain text")
	}
	if string(descr) != "just a description" {
		t.Fatalf("descr = %q", descr)
	}
}
