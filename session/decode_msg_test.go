package session

import "testing"

// stubTranscoder tags every conversion with which function and wire
// encoding produced it, so a test can tell StripHTML and ToSession
// apart instead of merely checking for a non-empty result.
func stubTranscoder() Transcoder {
	return Transcoder{
		ToSession: func(wireEncoding Encoding, b []byte) string {
			if wireEncoding == EncodingCP1250 {
				return "CP1250:" + string(b)
			}
			return "UTF8:" + string(b)
		},
		StripHTML: func(xhtml string) string {
			return "STRIPPED:" + xhtml
		},
	}
}

func buildRecvMsg80(offsetPlain, offsetAttr uint32, rest []byte) []byte {
	payload := make([]byte, hdrRecvMsg80)
	le32(payload[0:4], 10)   // sender
	le32(payload[4:8], 1)    // seq
	le32(payload[8:12], 0)   // time
	le32(payload[12:16], uint32(ClassMsg))
	le32(payload[16:20], offsetPlain)
	le32(payload[20:24], offsetAttr)
	return append(payload, rest...)
}

// When the server sends both an XHTML body and a plain body, the
// reported plain text must be derived by stripping the XHTML, not by
// directly converting the wire's plain-text bytes (spec.md §8's
// round-trip property: "The XHTML-strip of an XHTML body equals the
// plain body when a server includes both").
func TestDecodeRecvMsg80PrefersStrippedXHTMLWhenPresent(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingUTF8, Transcoder: stubTranscoder()}}

	xhtmlBytes := append([]byte("<b>hi</b>"), 0)
	offsetPlain := hdrRecvMsg80 + len(xhtmlBytes)
	plainBytes := append([]byte("hi"), 0)
	rest := append(append([]byte{}, xhtmlBytes...), plainBytes...)

	payload := buildRecvMsg80(uint32(offsetPlain), 0, rest)

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Kind != EventMsg {
		t.Fatalf("kind = %v, want EventMsg", ev.Kind)
	}
	if ev.Msg.XHTML != "UTF8:<b>hi</b>" {
		t.Fatalf("xhtml = %q", ev.Msg.XHTML)
	}
	want := "STRIPPED:UTF8:<b>hi</b>"
	if ev.Msg.Body != want {
		t.Fatalf("body = %q, want %q (stripped from xhtml, not direct-converted)", ev.Msg.Body, want)
	}
}

// When the server sends only a plain body, the plain text must come
// from a direct cp1250->target conversion of the wire bytes, not from
// stripping an empty XHTML string (which would silently yield "").
func TestDecodeRecvMsg80DirectConvertsWhenXHTMLAbsent(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingUTF8, Transcoder: stubTranscoder()}}

	plainBytes := append([]byte("hello"), 0)
	payload := buildRecvMsg80(hdrRecvMsg80, 0, plainBytes)

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Msg.XHTML != "" {
		t.Fatalf("xhtml = %q, want empty", ev.Msg.XHTML)
	}
	want := "CP1250:hello"
	if ev.Msg.Body != want {
		t.Fatalf("body = %q, want %q (direct cp1250 conversion, not StripHTML of an empty string)", ev.Msg.Body, want)
	}
}

// The modern packet's attr tail is the same TLV options stream as the
// legacy body trailer: conference recipients must be parsed out of it,
// not delivered as opaque bytes.
func TestDecodeRecvMsg80ParsesConferenceRecipientsFromAttrTail(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingCP1250}}

	plainBytes := append([]byte("hi"), 0)
	tail := []byte{optConference}
	countBuf := make([]byte, 4)
	le32(countBuf, 2)
	tail = append(tail, countBuf...)
	r1, r2 := make([]byte, 4), make([]byte, 4)
	le32(r1, 20)
	le32(r2, 30)
	tail = append(tail, r1...)
	tail = append(tail, r2...)

	offsetAttr := hdrRecvMsg80 + len(plainBytes)
	payload := buildRecvMsg80(hdrRecvMsg80, uint32(offsetAttr), append(plainBytes, tail...))

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Msg.Body != "hi" {
		t.Fatalf("body = %q", ev.Msg.Body)
	}
	if len(ev.Msg.Recipients) != 2 || ev.Msg.Recipients[0] != 20 || ev.Msg.Recipients[1] != 30 {
		t.Fatalf("recipients = %v", ev.Msg.Recipients)
	}
}

// Rich-text attributes come out of the option's own length-prefixed
// payload: the tag byte and the two length bytes must not leak into
// Msg.Formats.
func TestDecodeRecvMsg80StripsOptionFramingFromFormats(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingCP1250}}

	plainBytes := append([]byte("hi"), 0)
	blob := []byte{0xaa, 0xbb, 0xcc}
	tail := []byte{optRichText}
	lenBuf := make([]byte, 2)
	le16(lenBuf, uint16(len(blob)))
	tail = append(tail, lenBuf...)
	tail = append(tail, blob...)

	offsetAttr := hdrRecvMsg80 + len(plainBytes)
	payload := buildRecvMsg80(hdrRecvMsg80, uint32(offsetAttr), append(plainBytes, tail...))

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if len(ev.Msg.Formats) != len(blob) || ev.Msg.Formats[0] != 0xaa || ev.Msg.Formats[2] != 0xcc {
		t.Fatalf("formats = %x, want the bare blob %x", ev.Msg.Formats, blob)
	}
}

// Image requests ride the modern packet's attr tail exactly as they
// ride the legacy body trailer.
func TestDecodeRecvMsg80ImageRequestOverridesMsg(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingCP1250}}

	plainBytes := append([]byte("x"), 0)
	tail := []byte{optImageReq}
	sizeBuf, crcBuf := make([]byte, 4), make([]byte, 4)
	le32(sizeBuf, 4096)
	le32(crcBuf, 0xdeadbeef)
	tail = append(tail, sizeBuf...)
	tail = append(tail, crcBuf...)

	offsetAttr := hdrRecvMsg80 + len(plainBytes)
	payload := buildRecvMsg80(hdrRecvMsg80, uint32(offsetAttr), append(plainBytes, tail...))

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Kind != EventImageRequest {
		t.Fatalf("kind = %v, want EventImageRequest", ev.Kind)
	}
	if ev.ImageRequest.Sender != 10 || ev.ImageRequest.Size != 4096 || ev.ImageRequest.CRC32 != 0xdeadbeef {
		t.Fatalf("image request = %+v", ev.ImageRequest)
	}
}

// Image reply fragments arrive through the modern attr tail too; a
// fragment carrying the whole declared size completes at once.
func TestDecodeRecvMsg80ImageReplyCompletesReassembly(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingCP1250}}

	plainBytes := append([]byte("x"), 0)
	tail := []byte{optImageReply}
	sizeBuf, crcBuf := make([]byte, 4), make([]byte, 4)
	le32(sizeBuf, 3)
	le32(crcBuf, 0x1234)
	tail = append(tail, sizeBuf...)
	tail = append(tail, crcBuf...)
	tail = append(tail, []byte("pic.png\x00abc")...)

	offsetAttr := hdrRecvMsg80 + len(plainBytes)
	payload := buildRecvMsg80(hdrRecvMsg80, uint32(offsetAttr), append(plainBytes, tail...))

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Kind != EventImageReply {
		t.Fatalf("kind = %v, want EventImageReply", ev.Kind)
	}
	if ev.ImageReply.Filename != "pic.png" || string(ev.ImageReply.Bytes) != "abc" {
		t.Fatalf("image reply = %+v", ev.ImageReply)
	}
}

// An attr offset pointing outside the frame degrades to "no attrs";
// the message itself is still delivered.
func TestDecodeRecvMsg80InvalidAttrOffsetKeepsMessage(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingCP1250}}

	plainBytes := append([]byte("hello"), 0)
	payload := buildRecvMsg80(hdrRecvMsg80, uint32(hdrRecvMsg80+len(plainBytes)+50), plainBytes)

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Kind != EventMsg || ev.Msg.Body != "hello" {
		t.Fatalf("event = %+v, want the message delivered without attrs", ev)
	}
	if ev.Msg.Formats != nil || ev.Msg.Recipients != nil {
		t.Fatalf("formats/recipients should be absent, got %x / %v", ev.Msg.Formats, ev.Msg.Recipients)
	}
}

// When the session's configured encoding IS the legacy codepage, the
// plain body is delivered unchanged regardless of whether XHTML is
// present.
func TestDecodeRecvMsg80CP1250PassesThroughUnchanged(t *testing.T) {
	s := &Session{cfg: &Config{Encoding: EncodingCP1250, Transcoder: stubTranscoder()}}

	plainBytes := append([]byte("hello"), 0)
	payload := buildRecvMsg80(hdrRecvMsg80, 0, plainBytes)

	ev, err := decodeRecvMsg80(s, pktRecvMsg80, payload)
	if err != nil {
		t.Fatalf("decodeRecvMsg80: %v", err)
	}
	if ev.Msg.Body != "hello" {
		t.Fatalf("body = %q, want unconverted %q", ev.Msg.Body, "hello")
	}
}
