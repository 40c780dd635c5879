package session

import (
	"os"

	"github.com/rs/zerolog"
)

// baseLogger is the process-wide zerolog sink every session's logger
// derives from via With(). It is unexported, so only code inside this
// package (such as its tests) can swap the sink, by assigning before
// calling Open (matching the
// teacher's package-level log.Root() pattern, simplified to a single
// swappable var since this engine has no subsystem hierarchy).
var baseLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// newSessionLogger binds the fields every log line from this session
// should carry (SPEC_FULL.md's Logging section): component=session and
// uin=<account id>.
func newSessionLogger(s *Session) zerolog.Logger {
	return baseLogger.With().Str("component", "session").Uint32("uin", s.cfg.UIN).Logger()
}

// subLogger narrows a session's logger to one additional concern by
// binding a concern=<name> field (Open uses it for concern=frame), the
// same per-concern sub-logger pattern the teacher uses throughout
// p2p/enode for its log.New(ctx...) calls.
func (s *Session) subLogger(concern string) zerolog.Logger {
	return s.log.With().Str("concern", concern).Logger()
}
