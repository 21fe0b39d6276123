// Package evaluation orchestrates a grading run: feed corpus questions
// to a model engine, resolve ground truth for each query, grade the
// answers, and aggregate the results.
package evaluation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spboyer/safegrade/internal/execution"
	"github.com/spboyer/safegrade/internal/grading"
	"github.com/spboyer/safegrade/internal/models"
	"github.com/spboyer/safegrade/internal/nhtsa"
	"github.com/spboyer/safegrade/internal/statistics"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
	defaultTimeout = 60 * time.Second

	// ciConfidenceLevel is the confidence level for the score interval.
	ciConfidenceLevel = 0.95

	// minSamplesForCI is the smallest run that gets a bootstrap interval.
	minSamplesForCI = 2
)

// EventType represents the type of progress event
type EventType string

const (
	EventRunStart        EventType = "run_start"
	EventExampleComplete EventType = "example_complete"
	EventRunComplete     EventType = "run_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Index      int
	Total      int
	QueryType  models.QueryType
	Score      float64
	Passed     bool
	ErrorMsg   string
	DurationMs int64
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// Runner grades one model against one corpus.
type Runner struct {
	engine   execution.ModelEngine
	provider nhtsa.Provider

	modelID       string
	engineType    string
	timeout       time.Duration
	workers       int
	samples       int
	passThreshold float64

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithModelID sets the model the engine should answer with.
func WithModelID(modelID string) RunnerOption {
	return func(r *Runner) {
		r.modelID = modelID
	}
}

// WithEngineType records the engine type on the outcome.
func WithEngineType(engineType string) RunnerOption {
	return func(r *Runner) {
		r.engineType = engineType
	}
}

// WithTimeout sets the per-question timeout.
func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithWorkers bounds how many questions are in flight at once.
func WithWorkers(workers int) RunnerOption {
	return func(r *Runner) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

// WithSampleLimit caps how many examples are graded. Zero means all.
func WithSampleLimit(samples int) RunnerOption {
	return func(r *Runner) {
		r.samples = samples
	}
}

// WithPassThreshold overrides the default pass score.
func WithPassThreshold(threshold float64) RunnerOption {
	return func(r *Runner) {
		if threshold > 0 {
			r.passThreshold = threshold
		}
	}
}

// NewRunner creates a runner over an engine and a ground-truth provider.
func NewRunner(engine execution.ModelEngine, provider nhtsa.Provider, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:        engine,
		provider:      provider,
		timeout:       defaultTimeout,
		workers:       defaultWorkers,
		passThreshold: models.PassThreshold,
		listeners:     []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run grades every example and returns the aggregated outcome. Engine
// failures on individual examples are recorded as zero-score outcomes
// rather than aborting the run.
func (r *Runner) Run(ctx context.Context, examples []*models.Example, corpus string) (*models.EvaluationOutcome, error) {
	if r.samples > 0 && r.samples < len(examples) {
		examples = examples[:r.samples]
	}

	r.notifyProgress(ProgressEvent{
		EventType: EventRunStart,
		Total:     len(examples),
	})

	start := time.Now()
	outcomes := make([]models.ExampleOutcome, len(examples))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for i, ex := range examples {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			outcome := r.evaluateExample(groupCtx, i, ex)
			outcomes[i] = outcome

			r.notifyProgress(ProgressEvent{
				EventType: EventExampleComplete,
				Index:     i,
				Total:     len(examples),
				QueryType: outcome.QueryType,
				Score:     outcome.Score,
				Passed:    outcome.Passed,
				ErrorMsg:  outcome.ErrorMsg,
			})

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	duration := time.Since(start)

	result := &models.EvaluationOutcome{
		ModelID:    r.modelID,
		EngineType: r.engineType,
		Corpus:     corpus,
		Timestamp:  start.UTC(),
		Digest:     r.buildDigest(outcomes),
		Examples:   outcomes,
		DurationMs: duration.Milliseconds(),
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventRunComplete,
		Total:      len(examples),
		DurationMs: duration.Milliseconds(),
	})

	return result, nil
}

func (r *Runner) evaluateExample(ctx context.Context, index int, ex *models.Example) models.ExampleOutcome {
	outcome := models.ExampleOutcome{
		Index:     index,
		QueryType: ex.Query.Type,
		Question:  ex.Question(),
	}

	resp, err := r.engine.Complete(ctx, &execution.CompletionRequest{
		ModelID:  r.modelID,
		Messages: ex.Messages,
		Timeout:  r.timeout,
	})
	if err != nil {
		// A failed completion grades as zero, matching how an empty
		// answer would grade. The run keeps going.
		outcome.ErrorMsg = err.Error()
		return outcome
	}

	truth := nhtsa.ResolveGroundTruth(ctx, r.provider, &ex.Query)

	outcome.Answer = resp.Answer
	outcome.Score = grading.Grade(&ex.Query, truth, resp.Answer)
	outcome.Passed = outcome.Score >= r.passThreshold

	return outcome
}

func (r *Runner) buildDigest(outcomes []models.ExampleOutcome) models.EvaluationDigest {
	digest := models.EvaluationDigest{
		TotalExamples: len(outcomes),
	}

	scores := make([]float64, 0, len(outcomes))
	byType := map[models.QueryType][]float64{}

	for _, o := range outcomes {
		if o.ErrorMsg != "" {
			digest.Errors++
		}
		if o.Passed {
			digest.Passed++
		}

		scores = append(scores, o.Score)
		byType[o.QueryType] = append(byType[o.QueryType], o.Score)
	}

	digest.AvgScore = statistics.Mean(scores)
	digest.StdDev = statistics.StdDev(scores)
	digest.PassRate = statistics.PassRate(scores, r.passThreshold)

	types := make([]models.QueryType, 0, len(byType))
	for qt := range byType {
		types = append(types, qt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, qt := range types {
		typeScores := byType[qt]
		digest.ByType = append(digest.ByType, models.TypeDigest{
			QueryType: qt,
			Count:     len(typeScores),
			AvgScore:  statistics.Mean(typeScores),
			PassRate:  statistics.PassRate(typeScores, r.passThreshold),
		})
	}

	if len(scores) >= minSamplesForCI {
		ci := statistics.BootstrapCI(scores, ciConfidenceLevel)
		digest.ScoreCILower = ci.Lower
		digest.ScoreCIUpper = ci.Upper
	}

	return digest
}
