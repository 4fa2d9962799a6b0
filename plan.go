package ganttic

// Complexity is a descriptive difficulty rating for a task. It has no
// effect on scheduling.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// IsValid reports whether the value is one of the known complexity levels.
func (x Complexity) IsValid() bool {
	switch x {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// Subtask is an informational breakdown item of a task. Subtask durations
// are not consumed by the scheduler; callers may sum them via
// Task.SubtaskDuration to derive a task duration.
type Subtask struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	DurationHours float64 `json:"duration"`
}

// Task is a schedulable unit of work. ID is the identity key for
// dependency edges and merge reconciliation and must never be
// regenerated once assigned. StartOffsetHours is output only: the
// scheduler always recomputes it and never trusts an incoming value.
type Task struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Phase            string     `json:"phase"`
	Description      string     `json:"description,omitempty"`
	DurationHours    float64    `json:"duration"`
	BufferHours      float64    `json:"buffer"`
	Dependencies     []string   `json:"dependencies"`
	StartOffsetHours float64    `json:"startOffset"`
	Complexity       Complexity `json:"complexity"`
	Subtasks         []Subtask  `json:"subtasks"`
}

// EndOffsetHours returns the hour offset at which dependents of the task
// may start: start offset plus duration plus buffer.
func (t Task) EndOffsetHours() float64 {
	return t.StartOffsetHours + t.DurationHours + t.BufferHours
}

// SubtaskDuration returns the sum of the task's subtask durations.
func (t Task) SubtaskDuration() float64 {
	var total float64
	for _, st := range t.Subtasks {
		total += st.DurationHours
	}
	return total
}

func (t Task) clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = append([]string(nil), t.Dependencies...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return c
}

// Plan is the full collection of tasks plus descriptive metadata for one
// project. Task ids are expected to be unique; the scheduler and the
// reconciler treat the last occurrence as authoritative when they are
// not.
type Plan struct {
	Title       string   `json:"title"`
	Summary     string   `json:"description"`
	Assumptions []string `json:"assumptions"`
	Tasks       []Task   `json:"tasks"`
}

// Clone returns a deep copy of the plan. Both Schedule and Merge operate
// on copies so that caller-owned data is never mutated.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := &Plan{
		Title:   p.Title,
		Summary: p.Summary,
	}
	if p.Assumptions != nil {
		c.Assumptions = append([]string(nil), p.Assumptions...)
	}
	if p.Tasks != nil {
		c.Tasks = make([]Task, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			c.Tasks = append(c.Tasks, t.clone())
		}
	}
	return c
}

// TotalDuration returns the project duration in hours: the maximum task
// end offset over all tasks, or 0 for an empty plan. Meaningful only
// after the plan has been scheduled.
func (p *Plan) TotalDuration() float64 {
	var maxEnd float64
	for _, t := range p.Tasks {
		if end := t.EndOffsetHours(); end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd
}
