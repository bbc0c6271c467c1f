package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnologies_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Technologies
	}{
		{name: "string array", input: `["Go", "React"]`, want: Technologies{"Go", "React"}},
		{name: "value objects", input: `[{"value":"Go"}]`, want: Technologies{"Go"}},
		{name: "mixed elements", input: `["Go", {"value":" CSS "}]`, want: Technologies{"Go", "CSS"}},
		{name: "comma separated", input: `"React, Node.js, CSS"`, want: Technologies{"React", "Node.js", "CSS"}},
		{name: "json array inside a string", input: `"[{\"value\":\"Go\"},{\"value\":\"Rust\"}]"`, want: Technologies{"Go", "Rust"}},
		{name: "empty entries dropped", input: `"React,, ,CSS,"`, want: Technologies{"React", "CSS"}},
		{name: "blank strings dropped from array", input: `["", " Go ", null]`, want: Technologies{"Go"}},
		{name: "empty string", input: `""`, want: Technologies{}},
		{name: "null", input: `null`, want: Technologies{}},
		{name: "malformed array literal falls back to commas", input: `"[Go, Rust"`, want: Technologies{"[Go", "Rust"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Technologies
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTechnologies_UnmarshalJSON_Rejects(t *testing.T) {
	var got Technologies
	assert.Error(t, json.Unmarshal([]byte(`42`), &got))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &got))
}

func TestTechnologies_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Technologies(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = json.Marshal(Technologies{"Go", "CSS"})
	require.NoError(t, err)
	assert.JSONEq(t, `["Go","CSS"]`, string(data))
}

func TestTechnologies_NormalizedFormIsStable(t *testing.T) {
	var first Technologies
	require.NoError(t, json.Unmarshal([]byte(`"React, Node.js, CSS"`), &first))

	data, err := json.Marshal(first)
	require.NoError(t, err)

	var second Technologies
	require.NoError(t, json.Unmarshal(data, &second))
	assert.Equal(t, first, second)
	assert.Equal(t, Technologies{"React", "Node.js", "CSS"}, second)
}
