package session

import "time"

// EventKind tags the variant held by an Event. See spec §3/§9: the
// event is modeled as a tagged union with a single free function
// rather than a struct with every possible field populated.
type EventKind int

const (
	EventNone EventKind = iota
	EventConnSuccess
	EventConnFailed
	EventDisconnect
	EventDisconnectAck
	EventMsg
	EventAck
	EventStatus
	EventStatus60
	EventNotify
	EventNotify60
	EventNotifyDescr
	EventImageRequest
	EventImageReply
	EventUserlist
	EventXMLEvent
	EventPong
	EventRawPacket
)

// MsgClass mirrors the legacy msgclass wire field; named constants for
// the values the spec and original_source care about.
type MsgClass uint32

const (
	ClassMsg     MsgClass = 0x04
	ClassChatMsg MsgClass = 0x08
	ClassAck     MsgClass = 0x10
	ClassQueued  MsgClass = 0x20
	ClassOffline MsgClass = 0x40
)

// Msg is the RecvMsg/RecvMsg80 event payload.
type Msg struct {
	Sender     uint32
	Seq        uint32
	Time       time.Time
	Class      MsgClass
	Body       string
	XHTML      string // empty when the server sent no XHTML alternative
	Recipients []uint32
	Formats    []byte // opaque rich-text attribute blob, copied verbatim
	DCCRequest bool   // body was the single byte 0x02 (peer wants a DCC callback)
}

// Ack is the SendMsgAck event payload.
type Ack struct {
	Status    uint32
	Recipient uint32
	Seq       uint32
}

// Status is the plain (legacy) Status event payload.
type Status struct {
	UIN    uint32
	Status uint32
	Descr  string
}

// Status60 is the Status60/Status77 event payload, with capability
// bits folded out of UIN and into Version (spec §4.4, SPEC_FULL #2).
type Status60 struct {
	UIN       uint32
	Status    uint32
	IP        uint32
	Port      uint16
	Version   uint32
	ImageSize uint8
	Descr     string
	Time      time.Time // zero Time when no trailing timestamp was present
	HasTime   bool
}

// NotifyEntry is one record of a legacy NotifyReply array.
type NotifyEntry struct {
	UIN    uint32
	Status uint32
}

// Notify60Entry is one record of a Notify60/77/80 array, with the
// same capability folding as Status60.
type Notify60Entry struct {
	UIN       uint32
	Status    uint32
	IP        uint32
	Port      uint16
	Version   uint32
	ImageSize uint8
	Descr     string
}

// NotifyDescr carries a presence description attached out of band to
// an existing contact entry.
type NotifyDescr struct {
	Entry uint32
	Descr string
}

// ImageRequestEvent is emitted when a peer asks us for an image we
// previously referenced in an outbound message.
type ImageRequestEvent struct {
	Sender uint32
	Size   uint32
	CRC32  uint32
}

// ImageReplyEvent is emitted once reassembly of an inbound image
// completes (or immediately, for an empty "I don't have it" reply).
type ImageReplyEvent struct {
	Sender   uint32
	Size     uint32
	CRC32    uint32
	Filename string
	Bytes    []byte
}

// UserlistEvent carries a completed contact-list export/import reply.
type UserlistEvent struct {
	Subtype byte
	Reply   []byte
}

// XMLEvent carries a server-directed XML payload (e.g. public
// directory search results, chat room invitations).
type XMLEvent struct {
	Data string
}

// RawPacket is the bypass-mode event (component J): a verbatim,
// freshly owned copy of a frame's type and payload.
type RawPacket struct {
	Type  uint32
	Bytes []byte
}

// Event is the tagged value delivered to the embedder by Watch. Only
// the field matching Kind is meaningful; the others are left at their
// zero value. This mirrors the teacher's devp2p Msg envelope (Code,
// Size, Payload) generalized to a closed set of shapes instead of one
// generic payload.
type Event struct {
	Kind EventKind

	Failed FailureKind // EventConnFailed

	Msg          Msg
	Ack          Ack
	Status       Status
	Status60     Status60
	Notify       []NotifyEntry
	Notify60     []Notify60Entry
	NotifyDescr  NotifyDescr
	ImageRequest ImageRequestEvent
	ImageReply   ImageReplyEvent
	Userlist     UserlistEvent
	XML          XMLEvent
	Raw          RawPacket
}

func noneEvent() Event { return Event{Kind: EventNone} }

// FreeEvent resets e to the zero Event, dropping its references to
// any payload buffers so the garbage collector can reclaim them. It
// exists for API symmetry with the spec's C-shaped free_event, giving
// callers migrating from the C API a single place to call; in Go,
// dropping the last reference is enough. Calling it again on the same
// Event has no further effect.
func FreeEvent(e *Event) {
	*e = Event{}
}
