package session

import "testing"

func TestDefaultStripHTML(t *testing.T) {
	got := defaultStripHTML("<b>hi &amp; bye</b>")
	if got != "hi & bye" {
		t.Fatalf("stripHTML = %q", got)
	}
}

func TestDefaultToSessionUTF8Passthrough(t *testing.T) {
	got := defaultToSession(EncodingUTF8, []byte("plain"))
	if got != "plain" {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultToSessionCP1250RoundTripsASCII(t *testing.T) {
	got := defaultToSession(EncodingCP1250, []byte("hello"))
	if got != "hello" {
		t.Fatalf("cp1250 decode of pure ASCII should be identity, got %q", got)
	}
}
