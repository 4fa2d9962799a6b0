package ganttic

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Opt is a three-state optional value for payload fields: absent,
// explicitly null, or set to a value. The distinction matters at the
// merge boundary because an upstream default-substitution pass would
// make "explicitly set to 1.0" and "defaulted to 1.0" look identical.
// Opt must be populated by JSON decoding (or NewOpt/NullOpt); its zero
// value means absent.
type Opt[T any] struct {
	set   bool
	null  bool
	value T
}

// NewOpt returns an Opt holding the given value.
func NewOpt[T any](v T) Opt[T] {
	return Opt[T]{set: true, value: v}
}

// NullOpt returns an Opt representing an explicit null.
func NullOpt[T any]() Opt[T] {
	return Opt[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the payload at all,
// including as an explicit null.
func (x Opt[T]) IsSet() bool { return x.set }

// IsNull reports whether the field was an explicit null.
func (x Opt[T]) IsNull() bool { return x.set && x.null }

// Value returns the field value and whether the field was present and
// non-null.
func (x Opt[T]) Value() (T, bool) {
	if !x.set || x.null {
		var zero T
		return zero, false
	}
	return x.value, true
}

// UnmarshalJSON implements json.Unmarshaler. Being called at all marks
// the field as set; a literal null marks it as explicitly null.
func (x *Opt[T]) UnmarshalJSON(data []byte) error {
	x.set = true
	if string(data) == "null" {
		x.null = true
		return nil
	}
	return json.Unmarshal(data, &x.value)
}

// MarshalJSON implements json.Marshaler. Absence cannot be expressed by
// encoding/json for struct fields, so absent and null both encode as
// null; the type is primarily for the decode side.
func (x Opt[T]) MarshalJSON() ([]byte, error) {
	if !x.set || x.null {
		return []byte("null"), nil
	}
	return json.Marshal(x.value)
}

// SubtaskPayload is the raw form of a proposed subtask.
type SubtaskPayload struct {
	Name          Opt[string]  `json:"name"`
	Description   Opt[string]  `json:"description"`
	DurationHours Opt[float64] `json:"duration"`
}

// TaskPayload is the raw form of a proposed task, before any default
// substitution. Every overwritable field is three-state so the
// reconciler can tell an intentional update from generation noise.
type TaskPayload struct {
	ID            string                `json:"id"`
	Name          Opt[string]           `json:"name"`
	Phase         Opt[string]           `json:"phase"`
	Description   Opt[string]           `json:"description"`
	DurationHours Opt[float64]          `json:"duration"`
	BufferHours   Opt[float64]          `json:"buffer"`
	Dependencies  Opt[[]string]         `json:"dependencies"`
	Complexity    Opt[string]           `json:"complexity"`
	Subtasks      Opt[[]SubtaskPayload] `json:"subtasks"`
}

// PlanPayload is the raw form of an externally produced plan proposal.
type PlanPayload struct {
	Title       Opt[string]   `json:"title"`
	Summary     Opt[string]   `json:"description"`
	Assumptions Opt[[]string] `json:"assumptions"`
	Tasks       []TaskPayload `json:"tasks"`
}

// planPayloadSchema is deliberately permissive: it pins down the shape
// and field types (allowing explicit nulls everywhere) but requires
// nothing beyond the tasks array. Content-level problems such as missing
// ids or unknown dependency references are handled tolerantly by the
// reconciler and the scheduler, not rejected here.
const planPayloadSchema = `{
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "title": {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]},
    "assumptions": {"type": ["array", "null"], "items": {"type": "string"}},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "name": {"type": ["string", "null"]},
          "phase": {"type": ["string", "null"]},
          "description": {"type": ["string", "null"]},
          "duration": {"type": ["number", "null"]},
          "buffer": {"type": ["number", "null"]},
          "startOffset": {"type": ["number", "null"]},
          "dependencies": {"type": ["array", "null"], "items": {"type": "string"}},
          "complexity": {"type": ["string", "null"]},
          "subtasks": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "name": {"type": ["string", "null"]},
                "description": {"type": ["string", "null"]},
                "duration": {"type": ["number", "null"]}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledPlanSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(planPayloadSchema))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("plan.schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("plan.schema.json")
})

// ParsePlanPayload validates raw proposal bytes against the plan schema
// and decodes them into a PlanPayload. This is the boundary where the
// external producer's output is first parsed; it runs before any default
// substitution so that the three-state field information survives into
// Merge. Structurally hopeless input is rejected with ErrInvalidPayload.
func ParsePlanPayload(data []byte) (*PlanPayload, error) {
	schema, err := compiledPlanSchema()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile plan payload schema")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "payload is not valid JSON", goerr.V("cause", err.Error()))
	}
	if err := schema.Validate(inst); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "payload does not match plan schema", goerr.V("cause", err.Error()))
	}

	var payload PlanPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode plan payload")
	}
	return &payload, nil
}

// PlanToPayload converts an already-coerced plan into a payload with
// every field marked as explicitly set. It exists for callers that no
// longer have the raw proposal bytes; converting a default-filled plan
// this way loses the set/defaulted distinction, so prefer
// ParsePlanPayload on the raw payload whenever it is available.
func PlanToPayload(p *Plan) *PlanPayload {
	if p == nil {
		return &PlanPayload{}
	}
	payload := &PlanPayload{
		Title:   NewOpt(p.Title),
		Summary: NewOpt(p.Summary),
	}
	if p.Assumptions != nil {
		payload.Assumptions = NewOpt(append([]string(nil), p.Assumptions...))
	}
	for _, t := range p.Tasks {
		tp := TaskPayload{
			ID:            t.ID,
			Name:          NewOpt(t.Name),
			Phase:         NewOpt(t.Phase),
			Description:   NewOpt(t.Description),
			DurationHours: NewOpt(t.DurationHours),
			BufferHours:   NewOpt(t.BufferHours),
			Complexity:    NewOpt(string(t.Complexity)),
			Dependencies:  NewOpt(append([]string(nil), t.Dependencies...)),
		}
		subtasks := make([]SubtaskPayload, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			subtasks = append(subtasks, SubtaskPayload{
				Name:          NewOpt(st.Name),
				Description:   NewOpt(st.Description),
				DurationHours: NewOpt(st.DurationHours),
			})
		}
		tp.Subtasks = NewOpt(subtasks)
		payload.Tasks = append(payload.Tasks, tp)
	}
	return payload
}
