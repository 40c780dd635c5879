package session

// HashFamily selects the login challenge/response algorithm.
type HashFamily int

const (
	HashGG32 HashFamily = iota
	HashSHA1
)

func (h HashFamily) wireByte() byte {
	if h == HashSHA1 {
		return wireHashSHA1
	}
	return wireHashGG32
}

// Generation selects the wire-format generation used for the login
// packet and, by extension, the shape of several reply packets.
type Generation int

const (
	GenerationLegacy Generation = iota // 7.x, Login70
	GenerationModern                   // 8.0, Login80
)

// ResolverKind enumerates how a session resolves a hostname to an
// address before connecting. The engine itself never performs DNS;
// this only records which external collaborator the embedder intends
// to use, kept as explicit per-session config rather than only a
// mutable global.
type ResolverKind int

const (
	ResolverDefault ResolverKind = iota
	ResolverFork
	ResolverPthread
	ResolverWin32
	ResolverCustom
)

// Encoding selects the character set delivered to the embedder for
// message bodies and presence descriptions.
type Encoding int

const (
	EncodingCP1250 Encoding = iota
	EncodingUTF8
)

// Transcoder is the injectable conversion seam: the core never
// hardcodes a particular text-encoding library, it accepts conversion
// functions as configuration so tests can substitute the identity
// transform. See encoding.go for the default golang.org/x/text-backed
// implementation.
type Transcoder struct {
	// ToSession converts bytes in the wire's native encoding (either
	// legacy cp1250 or UTF-8, depending on the packet kind) into the
	// session's configured Encoding.
	ToSession func(wireEncoding Encoding, b []byte) string
	// StripHTML derives a plain-text body from an XHTML body, used
	// when a server supplies only XHTML and the session wants plain
	// text.
	StripHTML func(xhtml string) string
}

// Config is the embedder-facing login parameters. All fields are
// plain, required-by-convention struct fields, matching the teacher's
// small rlpx.Config shape rather than a builder/options pattern.
type Config struct {
	UIN      uint32
	Password []byte // zeroed and released (set to nil) after the handshake if ClearPassword
	Hash     HashFamily
	Gen      Generation

	ResolverKind ResolverKind
	// CustomResolver is only consulted when ResolverKind ==
	// ResolverCustom; see resolver.go.
	CustomResolver *CustomResolver

	InitialStatus uint32
	InitialDescr  string

	ImageSize uint8
	Features  uint32

	// ExternalIP is the caller-supplied IPv4 to advertise for
	// peer-to-peer transfer hints. 255.255.255.255 means "ask the
	// socket for its local address".
	ExternalIP   uint32
	ExternalPort uint16

	Encoding   Encoding
	Transcoder Transcoder

	// ClearPassword, when true, zeroes Config.Password in place once
	// it has been folded into the login hash, then sets it to nil.
	ClearPassword bool

	// RawMode bypasses the handler table entirely: every inbound
	// frame is delivered as a RawPacket event.
	RawMode bool

	// AuxDecode, when set, receives the whole frames of the packet
	// kinds the core delegates to auxiliary subsystems: public
	// directory search replies and DCC7 file-transfer control. It
	// follows the same contract as a built-in decoder — an EventNone
	// result with a nil error discards the frame, a populated event is
	// delivered, and a non-nil error is fatal. Nil means those packet
	// kinds are ignored.
	AuxDecode func(typ uint32, payload []byte) (Event, error)

	// Timeout bounds connect/login phases; on expiry Watch
	// synthesizes ConnFailed{FailureTimeout}.
	Timeout uint32 // seconds; 0 disables the timeout
}
