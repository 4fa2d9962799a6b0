package ganttic

import (
	"fmt"
	"log/slog"
)

// MergeMode selects what happens to tasks that exist in the previous
// plan but are absent from the proposal. The mode is always chosen by
// the caller: inferring it from the proposal size risks silently
// dropping tasks when the producer returns an incomplete response.
type MergeMode int

const (
	// MergeModePartial treats the proposal as an incremental update:
	// previous tasks not mentioned in it are preserved unchanged.
	MergeModePartial MergeMode = iota

	// MergeModeReplace treats the proposal as the full task list:
	// previous tasks not mentioned in it are dropped.
	MergeModeReplace
)

// String returns the string representation of the merge mode.
func (x MergeMode) String() string {
	return []string{"partial", "replace"}[x]
}

// Default values applied to newly proposed tasks when optional fields
// are absent.
const (
	DefaultNewTaskDurationHours = 1.0
	MinTaskDurationHours        = 0.5
	DefaultSubtaskDurationHours = 0.5
)

// MergeResult holds the reconciled plan and any diagnostics produced
// while merging.
type MergeResult struct {
	Plan        *Plan
	Diagnostics []Diagnostic
}

type mergeConfig struct {
	mode   MergeMode
	logger *slog.Logger
}

// MergeOption represents configuration options for a merge run.
type MergeOption func(*mergeConfig)

// WithMergeMode sets the handling of previous tasks absent from the
// proposal. Default is MergeModePartial.
func WithMergeMode(mode MergeMode) MergeOption {
	return func(c *mergeConfig) {
		c.mode = mode
	}
}

// WithMergeLogger sets the logger for a merge run. Diagnostics are
// logged at warn level in addition to being returned. Default is a
// discard logger.
func WithMergeLogger(logger *slog.Logger) MergeOption {
	return func(c *mergeConfig) {
		c.logger = logger
	}
}

// Merge reconciles an externally produced, possibly-partial plan
// proposal against the previously accepted plan. Tasks are matched by
// id: an existing task is updated field by field, where a field is
// overwritten only when the proposal supplies a present, non-null value;
// a new id is inserted with defaults applied for missing optional
// fields. Proposed entries without an id are skipped with a diagnostic.
//
// The merge is pure: neither input is mutated. Start offsets in the
// result are reset to 0; callers must run Schedule (or SchedulePlan) on
// the output before trusting them.
func Merge(previous *Plan, proposed *PlanPayload, options ...MergeOption) *MergeResult {
	cfg := &mergeConfig{
		mode:   MergeModePartial,
		logger: defaultLogger,
	}
	for _, opt := range options {
		opt(cfg)
	}

	result := &MergeResult{}

	if previous == nil {
		previous = &Plan{}
	}
	if proposed == nil {
		result.Plan = previous.Clone()
		return result
	}

	merged := &Plan{
		Title:   previous.Title,
		Summary: previous.Summary,
	}
	if previous.Assumptions != nil {
		merged.Assumptions = append([]string(nil), previous.Assumptions...)
	}
	if title, ok := proposed.Title.Value(); ok && title != "" {
		merged.Title = title
	}
	if summary, ok := proposed.Summary.Value(); ok && summary != "" {
		merged.Summary = summary
	}
	if assumptions, ok := proposed.Assumptions.Value(); ok {
		merged.Assumptions = append([]string(nil), assumptions...)
	}

	prevByID := make(map[string]Task, len(previous.Tasks))
	for _, t := range previous.Tasks {
		prevByID[t.ID] = t
	}

	// Proposed tasks keep their proposal order; duplicate ids collapse
	// into the slot of the first occurrence with the last occurrence's
	// content.
	slot := map[string]int{}
	var tasks []Task
	for _, tp := range proposed.Tasks {
		if tp.ID == "" {
			d := Diagnostic{
				Kind:    DiagnosticSkippedTask,
				Message: "proposed task has no id, entry skipped",
			}
			result.Diagnostics = append(result.Diagnostics, d)
			warnDiagnostic(cfg.logger, d)
			continue
		}

		var task Task
		if prev, ok := prevByID[tp.ID]; ok {
			task = mergeTask(prev, tp, cfg, result)
		} else {
			task = newTask(tp)
		}

		if i, ok := slot[tp.ID]; ok {
			d := Diagnostic{
				Kind:    DiagnosticDuplicateID,
				TaskID:  tp.ID,
				Message: fmt.Sprintf("duplicate task id %q in proposal, last occurrence wins", tp.ID),
			}
			result.Diagnostics = append(result.Diagnostics, d)
			warnDiagnostic(cfg.logger, d)
			tasks[i] = task
			continue
		}
		slot[tp.ID] = len(tasks)
		tasks = append(tasks, task)
	}

	switch cfg.mode {
	case MergeModePartial:
		for _, prev := range previous.Tasks {
			if _, ok := slot[prev.ID]; ok {
				continue
			}
			kept := prev.clone()
			kept.StartOffsetHours = 0
			slot[prev.ID] = len(tasks)
			tasks = append(tasks, kept)
		}
	case MergeModeReplace:
		for _, prev := range previous.Tasks {
			if _, ok := slot[prev.ID]; !ok {
				cfg.logger.Debug("task dropped by replace merge", "task_id", prev.ID)
			}
		}
	}

	merged.Tasks = tasks
	result.Plan = merged

	cfg.logger.Info("plan merged",
		"mode", cfg.mode.String(),
		"previous_tasks", len(previous.Tasks),
		"proposed_tasks", len(proposed.Tasks),
		"merged_tasks", len(tasks),
		"diagnostic_count", len(result.Diagnostics),
	)

	return result
}

// mergeTask overwrites the previous task's fields with the present,
// non-null values of the proposal. Explicit nulls on numeric fields are
// reported: they may mean "no change intended" or a generation glitch,
// and the previous value is kept either way rather than erasing data.
func mergeTask(prev Task, tp TaskPayload, cfg *mergeConfig, result *MergeResult) Task {
	task := prev.clone()
	task.StartOffsetHours = 0

	if name, ok := tp.Name.Value(); ok && name != "" {
		task.Name = name
	}
	if phase, ok := tp.Phase.Value(); ok && phase != "" {
		task.Phase = phase
	}
	if description, ok := tp.Description.Value(); ok {
		task.Description = description
	}

	if duration, ok := tp.DurationHours.Value(); ok && duration > 0 {
		task.DurationHours = duration
	} else if tp.DurationHours.IsNull() {
		d := Diagnostic{
			Kind:    DiagnosticAmbiguousField,
			TaskID:  tp.ID,
			Message: fmt.Sprintf("task %q proposed duration is null, previous value kept", tp.ID),
		}
		result.Diagnostics = append(result.Diagnostics, d)
		warnDiagnostic(cfg.logger, d)
	}

	if buffer, ok := tp.BufferHours.Value(); ok {
		task.BufferHours = buffer
	} else if tp.BufferHours.IsNull() {
		d := Diagnostic{
			Kind:    DiagnosticAmbiguousField,
			TaskID:  tp.ID,
			Message: fmt.Sprintf("task %q proposed buffer is null, previous value kept", tp.ID),
		}
		result.Diagnostics = append(result.Diagnostics, d)
		warnDiagnostic(cfg.logger, d)
	}

	if deps, ok := tp.Dependencies.Value(); ok {
		task.Dependencies = append([]string(nil), deps...)
	}
	if complexity, ok := tp.Complexity.Value(); ok && Complexity(complexity).IsValid() {
		task.Complexity = Complexity(complexity)
	}
	if subtasks, ok := tp.Subtasks.Value(); ok && len(subtasks) > 0 {
		task.Subtasks = newSubtasks(subtasks)
	}

	return task
}

// newTask builds a task from a proposal entry whose id is not in the
// previous plan, applying defaults for missing optional fields.
func newTask(tp TaskPayload) Task {
	task := Task{
		ID:         tp.ID,
		Name:       "New Task",
		Phase:      "New Phase",
		Complexity: ComplexityMedium,
	}

	if name, ok := tp.Name.Value(); ok && name != "" {
		task.Name = name
	}
	if phase, ok := tp.Phase.Value(); ok && phase != "" {
		task.Phase = phase
	}
	if description, ok := tp.Description.Value(); ok {
		task.Description = description
	}

	task.DurationHours = DefaultNewTaskDurationHours
	if duration, ok := tp.DurationHours.Value(); ok && duration > 0 {
		task.DurationHours = duration
	}
	if task.DurationHours < MinTaskDurationHours {
		task.DurationHours = MinTaskDurationHours
	}

	if buffer, ok := tp.BufferHours.Value(); ok {
		task.BufferHours = buffer
	}
	if deps, ok := tp.Dependencies.Value(); ok {
		task.Dependencies = append([]string(nil), deps...)
	}
	if complexity, ok := tp.Complexity.Value(); ok && Complexity(complexity).IsValid() {
		task.Complexity = Complexity(complexity)
	}
	if subtasks, ok := tp.Subtasks.Value(); ok {
		task.Subtasks = newSubtasks(subtasks)
	}

	return task
}

func newSubtasks(payloads []SubtaskPayload) []Subtask {
	subtasks := make([]Subtask, 0, len(payloads))
	for _, sp := range payloads {
		st := Subtask{DurationHours: DefaultSubtaskDurationHours}
		if name, ok := sp.Name.Value(); ok {
			st.Name = name
		}
		if description, ok := sp.Description.Value(); ok {
			st.Description = description
		}
		if duration, ok := sp.DurationHours.Value(); ok && duration > 0 {
			st.DurationHours = duration
		}
		subtasks = append(subtasks, st)
	}
	return subtasks
}
