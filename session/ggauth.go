package session

import (
	"crypto/sha1"
	"encoding/binary"
)

// hashBufLen is the fixed size of the hash field carried in both
// Login70 and Login80: only the first 4 (GG32) or 20 (SHA-1) bytes
// are meaningful, the rest is zero-padded.
const hashBufLen = 64

// foldHash implements the GG32 challenge/response fold, bit-exact with
// the algorithm original_source/src/handlers.c calls as
// gg_login_hash (the fold function itself lives in a sibling file not
// included in the retrieved sources, but its shape — a seed-keyed
// rolling XOR/rotate fold over the password bytes — is the one
// documented by every interoperable reimplementation of this wire
// protocol).
func foldHash(password []byte, seed uint32) uint32 {
	var x uint32
	y := seed
	for _, b := range password {
		x = (x & 0xffffff00) | uint32(b)
		y ^= x
		y += x
		x <<= 8
		y ^= x
		x <<= 8
		y -= x
		x <<= 8
		y ^= x
		z := y & 0x1f
		y = (y << z) | (y >> (32 - z))
	}
	return y
}

// shaHash implements the SHA-1 challenge/response variant: SHA-1 over
// the password bytes followed by the little-endian challenge.
func shaHash(password []byte, seed uint32) [sha1.Size]byte {
	var seedBuf [4]byte
	binary.LittleEndian.PutUint32(seedBuf[:], seed)
	h := sha1.New()
	h.Write(password)
	h.Write(seedBuf[:])
	var out [sha1.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// buildHashBuf computes the 64-byte hash field for a login packet,
// per the selected HashFamily.
func buildHashBuf(family HashFamily, password []byte, seed uint32) [hashBufLen]byte {
	var buf [hashBufLen]byte
	switch family {
	case HashSHA1:
		h := shaHash(password, seed)
		copy(buf[:], h[:])
	default:
		v := foldHash(password, seed)
		binary.LittleEndian.PutUint32(buf[:4], v)
	}
	return buf
}

// BuildHashBufForProbe exposes buildHashBuf for out-of-band tooling
// (cmd/ggprobe's hash subcommand) that wants to compute a login hash
// without opening a session.
func BuildHashBufForProbe(family HashFamily, password []byte, seed uint32) [64]byte {
	return buildHashBuf(family, password, seed)
}

// zeroPassword overwrites b in place. Called after the hash has been
// folded, when Config.ClearPassword is set.
func zeroPassword(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
