package session

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DefaultTranscoder returns the Transcoder the embedder gets unless it
// supplies its own (spec §9: the transcoder is injectable so tests can
// substitute the identity transform; this is the real default, not a
// stub, since text-encoding conversion is genuinely useful outside of
// tests).
func DefaultTranscoder() Transcoder {
	return Transcoder{
		ToSession: defaultToSession,
		StripHTML: defaultStripHTML,
	}
}

// defaultToSession converts from wireEncoding to UTF-8: cp1250 input
// is decoded, UTF-8 input is passed through unchanged. It always
// produces UTF-8 and does not consult the session's Encoding, so a
// session configured for EncodingCP1250 still receives UTF-8 from it.
// The wire encoding for legacy (pre-8.0) packets is cp1250;
// RecvMsg80's XHTML body is always UTF-8 on the wire (spec §4.4).
func defaultToSession(wireEncoding Encoding, b []byte) string {
	switch wireEncoding {
	case EncodingCP1250:
		out, err := charmap.Windows1250.NewDecoder().Bytes(b)
		if err != nil {
			return string(b)
		}
		return string(out)
	default:
		return string(b)
	}
}

// defaultStripHTML implements the "derive plain text from XHTML"
// transform spec §4.4 calls for when a server sends only an XHTML
// body. This is a minimal, allocation-light tag stripper: it is not a
// full HTML parser, matching the scope of the single call site that
// needs it (message bodies the server itself generated as simple
// span/a-tag markup, not arbitrary documents).
func defaultStripHTML(xhtml string) string {
	var b strings.Builder
	b.Grow(len(xhtml))
	inTag := false
	for _, r := range xhtml {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return unescapeEntities(b.String())
}

var htmlEntities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": "\"",
	"&apos;": "'",
	"&nbsp;": " ",
}

func unescapeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	for entity, lit := range htmlEntities {
		s = strings.ReplaceAll(s, entity, lit)
	}
	return s
}
