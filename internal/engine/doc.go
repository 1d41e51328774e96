// Package engine owns the UCI engine subprocess and mediates all access
// to it.
//
// The package combines the lifecycle manager (spawn, handshake, crash and
// shutdown handling), the single stdout reader that frames and dispatches
// protocol lines, and the two request adapters (ranked analysis, skill-
// bounded best move). Exclusive use of the subprocess is brokered through
// the broker package: exactly one conversation owns the engine's stdio at
// any instant, so a response line can never be attributed to the wrong
// request.
package engine
