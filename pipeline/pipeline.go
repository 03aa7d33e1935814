// Package pipeline drives the reentrant ttar codec across a whole stream:
// one goroutine reads PCM (or TTA) and dispatches whole frames to a pool of
// worker goroutines, while a bounded ring of in-flight slots guarantees the
// output comes back in the same order the input arrived, regardless of
// which worker happened to finish which frame first.
//
// The codec package (and the root ttar package built on it) is the pure,
// synchronous engine; this package is the concurrency built around it, and
// owns no codec state of its own beyond one EncodeState/DecodeState per
// worker goroutine.
//
// ref: libttaR cli/modes/mt-struct.c, mode_encode_loop.c, mode_decode_loop.c
package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Warning reports a non-fatal, per-frame condition the pipeline recovered
// from: a truncated read, a corrupt frame, or a CRC mismatch. Nothing in
// this package aborts a run over a Warning; the caller decides whether
// warnings should be surfaced to a user.
//
// ref: spec.md §7 "decode_fail ... not fatal to the pipeline"
type Warning struct {
	// Frame is the zero-based index of the affected frame.
	Frame int
	// Message describes what happened.
	Message string
}

// Logger is the leveled logger warnings are written to. It defaults to a
// logger writing to charmbracelet/log's default destination (stderr);
// assign a different *log.Logger (e.g. one built with log.NewWithOptions)
// to redirect or silence it.
//
// The codec core (package codec, package ttar) never touches this logger:
// per spec.md §5 it is pure and reentrant and logs nothing. Only this
// package's per-frame warnings pass through it.
var Logger = log.Default()

func warnf(frame int, format string, args ...any) Warning {
	msg := fmt.Sprintf(format, args...)
	Logger.Warn(msg, "frame", frame)
	return Warning{Frame: frame, Message: msg}
}
