package ganttic

import (
	"fmt"
	"log/slog"
	"sort"
)

// ScheduleResult holds the time-placed task collection and any
// diagnostics produced while computing it.
type ScheduleResult struct {
	Tasks       []Task
	Diagnostics []Diagnostic
}

type scheduleConfig struct {
	logger *slog.Logger
}

// ScheduleOption represents configuration options for a scheduling run.
type ScheduleOption func(*scheduleConfig)

// WithScheduleLogger sets the logger for a scheduling run. Diagnostics
// are logged at warn level in addition to being returned. Default is a
// discard logger.
func WithScheduleLogger(logger *slog.Logger) ScheduleOption {
	return func(c *scheduleConfig) {
		c.logger = logger
	}
}

// Traversal state of one task during a scheduling run. The state map is
// local to the call so concurrent runs over different plans never
// interact.
type visitState int

const (
	stateUnvisited visitState = iota
	stateInProgress
	stateResolved
)

// Schedule computes StartOffsetHours for every task from its duration,
// buffer and dependency edges. A task starts at the maximum end offset
// (start + duration + buffer) over its dependencies that exist in the
// collection, or at 0 when it has none.
//
// The input is never mutated. The returned tasks are sorted ascending by
// (start offset, original input position), so the output is stable for a
// fixed input. Dependency ids that do not resolve to a task in the
// collection are ignored. A dependency loop is broken at the edge that
// would close it; every task still receives a start offset. When two
// tasks share an id, the last occurrence is authoritative. All of these
// conditions are reported as diagnostics rather than errors: scheduling
// runs on every chat-driven edit, including transiently inconsistent
// ones, and must always produce some schedule.
func Schedule(tasks []Task, options ...ScheduleOption) *ScheduleResult {
	cfg := &scheduleConfig{logger: defaultLogger}
	for _, opt := range options {
		opt(cfg)
	}

	result := &ScheduleResult{}

	// Last occurrence wins on id collision.
	index := make(map[string]int, len(tasks))
	order := make([]string, 0, len(tasks))
	for i, t := range tasks {
		if _, ok := index[t.ID]; ok {
			d := Diagnostic{
				Kind:    DiagnosticDuplicateID,
				TaskID:  t.ID,
				Message: fmt.Sprintf("duplicate task id %q, last occurrence wins", t.ID),
			}
			result.Diagnostics = append(result.Diagnostics, d)
			warnDiagnostic(cfg.logger, d)
		} else {
			order = append(order, t.ID)
		}
		index[t.ID] = i
	}

	sched := make(map[string]*Task, len(order))
	for _, id := range order {
		t := tasks[index[id]].clone()
		t.StartOffsetHours = 0
		sched[id] = &t
	}

	state := make(map[string]visitState, len(order))
	cycleSeen := map[string]bool{}
	missingSeen := map[[2]string]bool{}

	// frame tracks one task on the explicit traversal stack; next is the
	// index of the next dependency to examine.
	type frame struct {
		id   string
		next int
	}

	for _, rootID := range order {
		if state[rootID] != stateUnvisited {
			continue
		}
		state[rootID] = stateInProgress
		stack := []frame{{id: rootID}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			t := sched[f.id]

			if f.next < len(t.Dependencies) {
				depID := t.Dependencies[f.next]
				f.next++

				if _, ok := sched[depID]; !ok {
					key := [2]string{f.id, depID}
					if !missingSeen[key] {
						missingSeen[key] = true
						d := Diagnostic{
							Kind:    DiagnosticMissingDependency,
							TaskID:  f.id,
							Message: fmt.Sprintf("task %q depends on unknown task id %q, dependency ignored", f.id, depID),
						}
						result.Diagnostics = append(result.Diagnostics, d)
						warnDiagnostic(cfg.logger, d)
					}
					continue
				}

				switch state[depID] {
				case stateUnvisited:
					state[depID] = stateInProgress
					stack = append(stack, frame{id: depID})
				case stateInProgress:
					// Re-entering a task before it resolves closes a cycle.
					// The edge contributes nothing; the task keeps its state.
					if !cycleSeen[depID] {
						cycleSeen[depID] = true
						d := Diagnostic{
							Kind:    DiagnosticCycle,
							TaskID:  depID,
							Message: fmt.Sprintf("circular dependency detected at task %q, cycle edge ignored", depID),
						}
						result.Diagnostics = append(result.Diagnostics, d)
						warnDiagnostic(cfg.logger, d)
					}
				case stateResolved:
					// Contribution picked up in the finalize pass below.
				}
				continue
			}

			// All dependencies examined: resolved ones bound the start
			// offset, unresolved ones (missing or cycle members) do not.
			var start float64
			for _, depID := range t.Dependencies {
				dep, ok := sched[depID]
				if !ok || state[depID] != stateResolved {
					continue
				}
				if end := dep.EndOffsetHours(); end > start {
					start = end
				}
			}
			t.StartOffsetHours = start
			state[f.id] = stateResolved
			stack = stack[:len(stack)-1]
		}
	}

	result.Tasks = make([]Task, 0, len(order))
	for _, id := range order {
		result.Tasks = append(result.Tasks, *sched[id])
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		a, b := result.Tasks[i], result.Tasks[j]
		if a.StartOffsetHours != b.StartOffsetHours {
			return a.StartOffsetHours < b.StartOffsetHours
		}
		return index[a.ID] < index[b.ID]
	})

	cfg.logger.Debug("schedule computed",
		"task_count", len(result.Tasks),
		"diagnostic_count", len(result.Diagnostics),
	)

	return result
}

// SchedulePlan schedules all tasks of a plan and returns a new plan with
// the time-placed task collection. The input plan is never mutated.
func SchedulePlan(p *Plan, options ...ScheduleOption) (*Plan, []Diagnostic) {
	if p == nil {
		return &Plan{}, nil
	}
	result := Schedule(p.Tasks, options...)
	scheduled := p.Clone()
	scheduled.Tasks = result.Tasks
	return scheduled, result.Diagnostics
}
