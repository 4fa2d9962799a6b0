// Package ganttic turns externally produced task collections into
// dependency-consistent, time-placed schedules.
//
// The package has two entry points. Merge reconciles a possibly-partial
// plan proposal against the previously accepted plan, and Schedule
// computes a start offset for every task from its duration, buffer and
// dependency edges. Both are pure functions: they never mutate their
// inputs, never perform I/O, and never fail on malformed data. Problems
// found along the way (dependency cycles, references to unknown task
// ids, duplicate ids) are reported as Diagnostic values attached to the
// result so that callers can decide how to surface them.
//
// The expected data producer is a language model, so the inputs are
// treated as untrusted: ParsePlanPayload validates raw proposal bytes
// against a JSON schema before any merge runs, and the payload types
// preserve the distinction between a field that was explicitly set,
// explicitly null, and absent.
package ganttic

import "log/slog"

var defaultLogger = slog.New(slog.DiscardHandler)
