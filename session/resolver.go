package session

import (
	"encoding/binary"
	"errors"
)

// inaddrNone is the sentinel record (0xFFFFFFFF) terminating a custom
// resolver's address stream, per original_source/test/automatic/resolver.c
// (spec §6 states the contract but not this wire value — see
// SPEC_FULL.md #6).
const inaddrNone uint32 = 0xFFFFFFFF

// CustomResolverStart begins an asynchronous hostname lookup. It
// returns a file descriptor that becomes readable as a sequence of
// 4-byte little-endian IPv4 addresses arrives, terminated by
// inaddrNone, plus an opaque handle passed back to Cleanup.
type CustomResolverStart func(hostname string) (fd int, opaque interface{}, err error)

// CustomResolverCleanup releases resources associated with a prior
// Start call. force is set when the session is tearing down before
// the lookup completed on its own.
type CustomResolverCleanup func(opaque interface{}, force bool)

// CustomResolver bundles the two halves of the contract spec §6
// describes for set_custom_resolver.
type CustomResolver struct {
	Start   CustomResolverStart
	Cleanup CustomResolverCleanup
}

// Process-wide default resolver configuration. Spec design note 9:
// retained for backward compatibility, but it is read only by Dial
// (through resolveConfigured) before a session exists — never
// afterward, so later calls to SetResolver cannot affect sessions
// already open.
var (
	defaultResolverKind   = ResolverDefault
	defaultCustomResolver *CustomResolver
)

// SetResolver changes the process-wide default resolver kind used by
// Dial calls made after this call returns.
func SetResolver(kind ResolverKind) {
	defaultResolverKind = kind
}

// SetCustomResolver installs the process-wide default custom resolver
// callbacks, picked up by resolveConfigured for a Config with
// ResolverKind == ResolverCustom and no CustomResolver of its own.
func SetCustomResolver(r *CustomResolver) {
	defaultCustomResolver = r
}

// ParseResolverPipe decodes as many complete 4-byte address records
// as are present in buf. It returns the decoded addresses, whether
// the terminator record was seen, and the number of bytes consumed
// (always a multiple of 4, so the embedder can keep any trailing
// partial record for the next read).
func ParseResolverPipe(buf []byte) (addrs []uint32, done bool, consumed int) {
	for consumed+4 <= len(buf) {
		v := binary.LittleEndian.Uint32(buf[consumed:])
		consumed += 4
		if v == inaddrNone {
			done = true
			return
		}
		addrs = append(addrs, v)
	}
	return
}

var errNoCustomResolver = errors.New("session: resolver kind is custom but no CustomResolver is configured")

func resolveConfigured(cfg *Config) (*CustomResolver, ResolverKind) {
	kind := cfg.ResolverKind
	if kind == ResolverDefault {
		kind = defaultResolverKind
	}
	r := cfg.CustomResolver
	if kind == ResolverCustom && r == nil {
		r = defaultCustomResolver
	}
	return r, kind
}
