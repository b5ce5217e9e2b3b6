package schema

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormationSchema(t *testing.T) {
	v, err := Builtin("formation")
	require.NoError(t, err)

	cases := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"full", `{"name":"A","ball":[1,2],"offsets":[[0,1]],"zones":[{"player_index":0,"rect":[1,2,3,4],"color":[0,255,0,100]}]}`, true},
		{"no zones", `{"name":"A","ball":[1,2],"offsets":[]}`, true},
		{"rgb color", `{"name":"A","ball":[1,2],"offsets":[],"zones":[{"player_index":0,"rect":[1,2,3,4],"color":[1,2,3]}]}`, true},
		{"missing ball", `{"name":"A","offsets":[]}`, false},
		{"short point", `{"name":"A","ball":[1],"offsets":[]}`, false},
		{"blank name", `{"name":"  ","ball":[1,2],"offsets":[]}`, false},
		{"negative player", `{"name":"A","ball":[1,2],"offsets":[],"zones":[{"player_index":-1,"rect":[1,2,3,4],"color":[1,2,3]}]}`, false},
		{"color channel", `{"name":"A","ball":[1,2],"offsets":[],"zones":[{"player_index":0,"rect":[1,2,3,4],"color":[1,2,300]}]}`, false},
		{"not an object", `[1,2]`, false},
		{"not json", `{`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tc.doc))
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestZoneSchema(t *testing.T) {
	v := MustBuiltin("zone")
	assert.NoError(t, v.ValidateBytes([]byte(`{"player_index":1,"rect":[0,270,40,40],"color":[0,120,255]}`)))
	for _, doc := range []string{`{}`, `null`, `{"player_index":0}`, `{"player_index":0,"rect":[1,2,3],"color":[0,0,0]}`} {
		assert.ErrorIs(t, v.ValidateBytes([]byte(doc)), ErrInvalid, doc)
	}
}

func TestTeamSchema(t *testing.T) {
	v := MustBuiltin("team")
	assert.NoError(t, v.ValidateBytes([]byte(`{"name":"Home","player_names":["A","B"]}`)))
	assert.Error(t, v.ValidateBytes([]byte(`{"player_names":[]}`)))
	assert.Error(t, v.ValidateBytes([]byte(`{"name":"Home","player_names":[1]}`)))
}

func TestEventSchema(t *testing.T) {
	v := MustBuiltin("event")
	ok := map[string]interface{}{
		"event_id":   uuid.NewString(),
		"event_type": "formation.added",
		"source":     "planner",
		"timestamp":  "2024-01-01T00:00:00Z",
	}
	assert.NoError(t, v.Validate(ok))

	ok["event_id"] = "not-a-uuid"
	assert.ErrorIs(t, v.Validate(ok), ErrInvalid)
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("nope")
	assert.Error(t, err)
}
