package ganttic

import "log/slog"

// DiagnosticKind classifies a non-fatal problem found while merging or
// scheduling.
type DiagnosticKind string

const (
	// DiagnosticCycle is reported when dependency edges form a loop. The
	// edge closing the loop is ignored and the affected task still
	// receives a start offset.
	DiagnosticCycle DiagnosticKind = "cycle"

	// DiagnosticMissingDependency is reported when a task references a
	// dependency id that does not exist in the collection. The reference
	// contributes nothing to the schedule.
	DiagnosticMissingDependency DiagnosticKind = "missing_dependency"

	// DiagnosticDuplicateID is reported when two tasks share an id. The
	// last occurrence is treated as authoritative.
	DiagnosticDuplicateID DiagnosticKind = "duplicate_id"

	// DiagnosticSkippedTask is reported when a proposed task entry has no
	// id and is dropped by the reconciler.
	DiagnosticSkippedTask DiagnosticKind = "skipped_task"

	// DiagnosticAmbiguousField is reported when a proposed field is
	// explicitly null and the previous value is kept.
	DiagnosticAmbiguousField DiagnosticKind = "ambiguous_field"
)

// Diagnostic describes a non-fatal problem found during a merge or
// scheduling run. Diagnostics never block the result; they are returned
// alongside it so the caller can decide whether and how to surface them.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	TaskID  string         `json:"task_id,omitempty"`
	Message string         `json:"message"`
}

func warnDiagnostic(logger *slog.Logger, d Diagnostic) {
	logger.Warn(d.Message, "kind", string(d.Kind), "task_id", d.TaskID)
}
