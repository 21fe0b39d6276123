package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validRecord = `{"messages":[{"role":"system","content":"You are an automotive safety assistant."},{"role":"user","content":"Are there any recalls for a 2022 Honda Civic?"}],"query_type":"recalls","make":"Honda","model":"Civic","year":"2022"}`

func TestValidateExampleBytes(t *testing.T) {
	t.Run("ValidRecord", func(t *testing.T) {
		require.Empty(t, ValidateExampleBytes([]byte(validRecord)))
	})

	t.Run("ValidComparisonRecord", func(t *testing.T) {
		record := `{"messages":[{"role":"user","content":"Which is safer?"}],"query_type":"comparison","vehicles":[{"make":"Toyota","model":"Camry","year":"2023"},{"make":"Honda","model":"Accord","year":"2023"}]}`
		require.Empty(t, ValidateExampleBytes([]byte(record)))
	})

	t.Run("MissingQueryType", func(t *testing.T) {
		record := `{"messages":[{"role":"user","content":"hi"}]}`
		errs := ValidateExampleBytes([]byte(record))
		require.NotEmpty(t, errs)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		record := `{"messages":[{"role":"tool","content":"hi"}],"query_type":"recalls"}`
		errs := ValidateExampleBytes([]byte(record))
		require.NotEmpty(t, errs)
		require.Contains(t, errs[0], "/messages/0/role")
	})

	t.Run("NonNumericYear", func(t *testing.T) {
		record := `{"messages":[{"role":"user","content":"hi"}],"query_type":"recalls","year":"twenty-two"}`
		require.NotEmpty(t, ValidateExampleBytes([]byte(record)))
	})

	t.Run("SingleVehicleComparison", func(t *testing.T) {
		record := `{"messages":[{"role":"user","content":"hi"}],"query_type":"comparison","vehicles":[{"make":"Toyota","model":"Camry","year":"2023"}]}`
		require.NotEmpty(t, ValidateExampleBytes([]byte(record)))
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		errs := ValidateExampleBytes([]byte(`{"messages":`))
		require.Len(t, errs, 1)
		require.Contains(t, errs[0], "JSON parse error")
	})
}

func TestValidateCorpusFile(t *testing.T) {
	lines := []string{
		validRecord,
		"",
		`{"messages":[{"role":"user","content":"hi"}]}`,
		validRecord,
		`not json`,
	}

	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	result, err := ValidateCorpusFile(path)
	require.NoError(t, err)

	require.Len(t, result, 2)
	require.NotEmpty(t, result[3])
	require.Contains(t, result[5][0], "JSON parse error")
}

func TestValidateCorpusFileMissing(t *testing.T) {
	_, err := ValidateCorpusFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
}
