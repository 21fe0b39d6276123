package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	return path
}

func TestLoadValidSpec(t *testing.T) {
	path := writeSpec(t, `
name: nhtsa-validation
description: Score the fine-tuned model against the validation corpus.
run:
  engine: azure
  model: gpt-4o-mini
  samples: 25
  max_workers: 4
  timeout_seconds: 60
  pass_threshold: 0.7
  cache_dir: .nhtsa-cache
corpus:
  training: data/train.jsonl
  validation: data/validation.jsonl
`)

	spec, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "nhtsa-validation", spec.Name)
	require.Equal(t, EngineAzure, spec.Run.EngineType)
	require.Equal(t, "gpt-4o-mini", spec.Run.ModelID)
	require.Equal(t, 25, spec.Run.Samples)
	require.Equal(t, 4, spec.Run.Workers)
	require.Equal(t, 60*time.Second, spec.Timeout())
	require.Equal(t, 0.7, spec.Run.PassThreshold)
	require.Equal(t, "data/train.jsonl", spec.Corpus.Training)
	require.Equal(t, "data/validation.jsonl", spec.Corpus.Validation)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeSpec(t, "run: [not a mapping")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing")
}

func TestValidate(t *testing.T) {
	valid := func() EvalSpec {
		return EvalSpec{
			Run:    Run{EngineType: EngineMock, TimeoutSec: 30},
			Corpus: Corpus{Training: "data/train.jsonl"},
		}
	}

	t.Run("MockEngineNeedsNoModel", func(t *testing.T) {
		spec := valid()
		require.NoError(t, spec.Validate())
	})

	t.Run("MissingEngine", func(t *testing.T) {
		spec := valid()
		spec.Run.EngineType = ""
		require.ErrorContains(t, spec.Validate(), "engine is required")
	})

	t.Run("UnknownEngine", func(t *testing.T) {
		spec := valid()
		spec.Run.EngineType = "ollama"
		require.ErrorContains(t, spec.Validate(), "unknown engine")
	})

	t.Run("AzureNeedsModel", func(t *testing.T) {
		spec := valid()
		spec.Run.EngineType = EngineAzure
		require.ErrorContains(t, spec.Validate(), "model is required")
	})

	t.Run("ZeroTimeout", func(t *testing.T) {
		spec := valid()
		spec.Run.TimeoutSec = 0
		require.ErrorContains(t, spec.Validate(), "timeout_seconds")
	})

	t.Run("ThresholdOutOfRange", func(t *testing.T) {
		spec := valid()
		spec.Run.PassThreshold = 1.5
		require.ErrorContains(t, spec.Validate(), "pass_threshold")
	})

	t.Run("MissingTrainingCorpus", func(t *testing.T) {
		spec := valid()
		spec.Corpus.Training = ""
		require.ErrorContains(t, spec.Validate(), "corpus.training")
	})
}
