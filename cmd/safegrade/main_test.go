package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalFailureError(t *testing.T) {
	err := &EvalFailureError{
		Message: "average score 0.42 is below the pass threshold 0.70",
	}

	assert.Equal(t, "average score 0.42 is below the pass threshold 0.70", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name:     "EvalFailureError",
			err:      &EvalFailureError{Message: "eval failure"},
			wantType: "EvalFailureError",
		},
		{
			name:     "regular error",
			err:      errors.New("config error"),
			wantType: "other",
		},
		{
			name:     "wrapped EvalFailureError",
			err:      errors.Join(&EvalFailureError{Message: "eval failure"}, errors.New("additional context")),
			wantType: "EvalFailureError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var evalFailureErr *EvalFailureError
			isEvalFailure := errors.As(tt.err, &evalFailureErr)

			if tt.wantType == "EvalFailureError" {
				assert.True(t, isEvalFailure, "expected error to be detected as EvalFailureError")
			} else {
				assert.False(t, isEvalFailure, "expected error NOT to be detected as EvalFailureError")
			}
		})
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"evaluate", "grade", "generate", "probe", "init"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandHelp(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "NHTSA ground truth")
	assert.Contains(t, out.String(), "evaluate")
}
