package ganttic_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/ganttic"
	"github.com/m-mizutani/gt"
)

func TestOpt_ThreeStates(t *testing.T) {
	var payload struct {
		Set    ganttic.Opt[float64] `json:"set"`
		Null   ganttic.Opt[float64] `json:"null"`
		Absent ganttic.Opt[float64] `json:"absent"`
	}
	gt.NoError(t, json.Unmarshal([]byte(`{"set": 1.5, "null": null}`), &payload))

	t.Run("set", func(t *testing.T) {
		gt.True(t, payload.Set.IsSet())
		gt.False(t, payload.Set.IsNull())
		v, ok := payload.Set.Value()
		gt.True(t, ok)
		gt.Equal(t, 1.5, v)
	})

	t.Run("explicit null", func(t *testing.T) {
		gt.True(t, payload.Null.IsSet())
		gt.True(t, payload.Null.IsNull())
		_, ok := payload.Null.Value()
		gt.False(t, ok)
	})

	t.Run("absent", func(t *testing.T) {
		gt.False(t, payload.Absent.IsSet())
		gt.False(t, payload.Absent.IsNull())
		_, ok := payload.Absent.Value()
		gt.False(t, ok)
	})
}

func TestOpt_Constructors(t *testing.T) {
	set := ganttic.NewOpt("hello")
	v, ok := set.Value()
	gt.True(t, ok)
	gt.Equal(t, "hello", v)

	null := ganttic.NullOpt[string]()
	gt.True(t, null.IsSet())
	gt.True(t, null.IsNull())
}

func TestOpt_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]ganttic.Opt[float64]{
		"set":  ganttic.NewOpt(2.0),
		"null": ganttic.NullOpt[float64](),
	})
	gt.NoError(t, err)
	gt.Equal(t, `{"null":null,"set":2}`, string(data))
}

func TestParsePlanPayload(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		payload, err := ganttic.ParsePlanPayload([]byte(`{
			"title": "Japan Trip",
			"tasks": [
				{"id": "t1", "name": "Book flights", "duration": 5, "buffer": null},
				{"id": "t2", "dependencies": ["t1"]}
			]
		}`))
		gt.NoError(t, err)
		gt.N(t, len(payload.Tasks)).Equal(2)

		title, ok := payload.Title.Value()
		gt.True(t, ok)
		gt.Equal(t, "Japan Trip", title)

		gt.True(t, payload.Tasks[0].BufferHours.IsNull())
		gt.False(t, payload.Tasks[0].Dependencies.IsSet())

		deps, ok := payload.Tasks[1].Dependencies.Value()
		gt.True(t, ok)
		gt.Equal(t, []string{"t1"}, deps)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := ganttic.ParsePlanPayload([]byte(`here is your plan:`))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ganttic.ErrInvalidPayload))
	})

	t.Run("missing tasks", func(t *testing.T) {
		_, err := ganttic.ParsePlanPayload([]byte(`{"title": "no tasks"}`))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ganttic.ErrInvalidPayload))
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := ganttic.ParsePlanPayload([]byte(`{
			"tasks": [{"id": "t1", "duration": "five hours"}]
		}`))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ganttic.ErrInvalidPayload))
	})

	t.Run("explicit nulls pass the schema", func(t *testing.T) {
		payload, err := ganttic.ParsePlanPayload([]byte(`{
			"tasks": [{"id": "t1", "duration": null, "dependencies": null, "subtasks": null}]
		}`))
		gt.NoError(t, err)
		gt.True(t, payload.Tasks[0].DurationHours.IsNull())
		gt.True(t, payload.Tasks[0].Dependencies.IsNull())
		gt.True(t, payload.Tasks[0].Subtasks.IsNull())
	})
}
