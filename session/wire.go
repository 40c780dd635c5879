package session

// Packet type identifiers, as they appear in the 8-byte frame header
// (see frame.go). Names follow the wire protocol's own packet names.
const (
	pktWelcome       uint32 = 0x01
	pktSendMsg       uint32 = 0x02
	pktLoginOk       uint32 = 0x03
	pktSendMsgAck    uint32 = 0x05
	pktPong          uint32 = 0x07
	pktLoginFailed   uint32 = 0x09
	pktRecvMsg       uint32 = 0x0a
	pktStatus        uint32 = 0x0b
	pktNotifyReply   uint32 = 0x0c
	pktUserlistReply uint32 = 0x12
	pktNeedEmail     uint32 = 0x14
	pktLogin70       uint32 = 0x15
	pktStatus60      uint32 = 0x17
	pktNotifyReply60 uint32 = 0x18
	pktDisconnecting uint32 = 0x1b
	pktDisconnectAck uint32 = 0x1c
	pktPing          uint32 = 0x1f
	pktStatus77      uint32 = 0x22
	pktNotifyReply77 uint32 = 0x23
	pktXMLEvent      uint32 = 0x2a
	pktRecvMsg80     uint32 = 0x2e
	pktLogin80       uint32 = 0x31
	pktLoginOk80     uint32 = 0x35
	pktNotifyReply80 uint32 = 0x36
	pktNewStatus     uint32 = 0x38
	pktPubdir50Reply uint32 = 0x5a
	pktDCC7IdReply   uint32 = 0x6a
	pktDCC7New       uint32 = 0x6f
	pktDCC7Accept    uint32 = 0x71
	pktDCC7Reject    uint32 = 0x72
)

// Option tags in the TLV-like trailer that follows the NUL-terminated
// body of RecvMsg/RecvMsg80 packets.
const (
	optConference byte = 0x01
	optRichText   byte = 0x02
	optImageReq   byte = 0x04
	optImageReply byte = 0x05
	optImageCont  byte = 0x06
)

// Userlist reply subtypes (first byte of a UserlistReply packet).
const (
	userlistGetReply     byte = 0x00
	userlistGetMoreReply byte = 0x02
	userlistPutReply     byte = 0x03
	userlistPutMoreReply byte = 0x04
)

// Status values that carry a trailing description. A legacy
// NotifyReply whose sole (or first) record reports one of these is
// delivered as NotifyDescr instead of being folded into the Notify
// array (original_source/src/handlers.c's gg_session_handle_notify_reply).
const (
	statusNotAvailDescr uint32 = 0x15
	statusAvailDescr    uint32 = 0x04
	statusBusyDescr     uint32 = 0x05
)

// Capability bits folded into legacy uin fields (Status60/77, Notify60/77).
const (
	capAudio  uint32 = 0x40000000
	capAudio7 uint32 = 0x20000000
	capOmnix  uint32 = 0x08000000
	capMask   uint32 = capAudio | capAudio7 | capOmnix
)

// Fixed-size header lengths, in bytes, used as the minimum-length gate
// in the handler table (component D) and by decoders to locate the
// variable tail.
const (
	hdrWelcome         = 4
	hdrLogin70Fixed    = 4 + 1 + 64 + 4 + 4 + 1 + 4 + 2 + 4 + 2 + 1 + 1
	hdrLogin80Fixed    = 4 + 2 + 1 + 64 + 4 + 4 + 4 + 1 + 1
	hdrSendMsgAck      = 4 + 4 + 4
	hdrRecvMsg         = 4 + 4 + 4 + 4
	hdrRecvMsg80       = 4 + 4 + 4 + 4 + 4 + 4
	hdrStatus          = 4 + 4
	hdrStatus60Fixed   = 4 + 4 + 4 + 2 + 4 + 1
	hdrNotifyLegacyRec = 4 + 4
	hdrNotify60Rec     = hdrStatus60Fixed + 1 // + 1-byte descr length
	hdrNotify80Rec     = hdrStatus60Fixed + 4 // + u32 descr length
	hdrUserlistReply   = 1

	// frameCeiling is the hard ceiling on a single frame's declared
	// length (component B/C). A declared length beyond this is always
	// a fatal FailureInvalid, independent of packet type.
	frameCeiling = 64 * 1024
)

// hashType wire values for the Login70/Login80 hash_type field.
const (
	wireHashGG32 byte = 0x01
	wireHashSHA1 byte = 0x02
)

// login80 fixed flag, per spec §4.3/§6: always set by this client.
const login80Flags uint32 = 0x00800001

// login70Version is the protocol generation this client reports in
// the Login70 version field, ORed with the caller's feature bits.
const login70Version uint32 = 0x2a

// dunno2 constants, carried verbatim from the wire format (spec §6);
// their meaning is lost to history but the server expects these exact
// values in unused trailer bytes.
const (
	login70Dunno2 byte = 0xbe
	login80Dunno2 byte = 0x64
)
