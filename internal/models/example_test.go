package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const exampleRecord = `{
	"messages": [
		{"role": "system", "content": "You are a vehicle safety assistant."},
		{"role": "user", "content": "Are there any recalls for my 2022 Honda Civic?"}
	],
	"query_type": "recalls",
	"make": "Honda",
	"model": "Civic",
	"year": "2022",
	"source": "generator-v2"
}`

func TestExampleUnmarshal(t *testing.T) {
	var ex Example
	require.NoError(t, json.Unmarshal([]byte(exampleRecord), &ex))

	require.Len(t, ex.Messages, 2)
	require.Equal(t, "system", ex.Messages[0].Role)
	require.Equal(t, QueryRecalls, ex.Query.Type)
	require.Equal(t, "Honda", ex.Query.Make)
	require.Equal(t, "Civic", ex.Query.Model)
	require.Equal(t, "2022", ex.Query.Year)
}

func TestExampleQuestion(t *testing.T) {
	var ex Example
	require.NoError(t, json.Unmarshal([]byte(exampleRecord), &ex))
	require.Equal(t, "Are there any recalls for my 2022 Honda Civic?", ex.Question())

	empty := Example{Messages: []Message{{Role: "system", Content: "sys"}}}
	require.Empty(t, empty.Question())
}

func TestExampleRoundTripPreservesUnknownKeys(t *testing.T) {
	var ex Example
	require.NoError(t, json.Unmarshal([]byte(exampleRecord), &ex))

	data, err := json.Marshal(&ex)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, "generator-v2", out["source"])
	require.Equal(t, "recalls", out["query_type"])
	require.Equal(t, "Honda", out["make"])
	require.NotContains(t, out, "component_filter")
}

func TestExampleMarshalComparison(t *testing.T) {
	ex := Example{
		Messages: []Message{{Role: "user", Content: "Which is safer?"}},
		Query: Query{
			Type: QueryComparison,
			Vehicles: []Vehicle{
				{Make: "Honda", Model: "CR-V", Year: "2023"},
				{Make: "Toyota", Model: "RAV4", Year: "2023"},
			},
		},
	}

	data, err := json.Marshal(&ex)
	require.NoError(t, err)

	var out Example
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, QueryComparison, out.Query.Type)
	require.Len(t, out.Query.Vehicles, 2)
	require.Equal(t, "RAV4", out.Query.Vehicles[1].Model)
}
