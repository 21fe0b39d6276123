package evaluation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spboyer/safegrade/internal/execution"
	"github.com/spboyer/safegrade/internal/models"
	"github.com/stretchr/testify/require"
)

// stubProvider serves fixed ground truth, keyed by model name.
type stubProvider struct {
	recalls    map[string]*models.RecallRecord
	complaints map[string]*models.ComplaintRecord
	ratings    map[string]models.SafetyRating
}

func (p *stubProvider) FetchRecalls(ctx context.Context, make, model, year string) *models.RecallRecord {
	if rec, ok := p.recalls[model]; ok {
		return rec
	}
	return &models.RecallRecord{}
}

func (p *stubProvider) FetchComplaints(ctx context.Context, make, model, year string) *models.ComplaintRecord {
	if comp, ok := p.complaints[model]; ok {
		return comp
	}
	return &models.ComplaintRecord{}
}

func (p *stubProvider) FetchSafetyRating(ctx context.Context, make, model, year string) models.SafetyRating {
	return p.ratings[model]
}

// failEngine always errors.
type failEngine struct{}

func (failEngine) Initialize(ctx context.Context) error { return nil }

func (failEngine) Complete(ctx context.Context, req *execution.CompletionRequest) (*execution.CompletionResponse, error) {
	return nil, errors.New("model unavailable")
}

func (failEngine) Shutdown(ctx context.Context) error { return nil }

func userExample(question string, q models.Query) *models.Example {
	return &models.Example{
		Messages: []models.Message{{Role: "user", Content: question}},
		Query:    q,
	}
}

func testCorpus() []*models.Example {
	return []*models.Example{
		userExample("Are there any recalls for a 2022 Honda Civic?", models.Query{
			Type: models.QueryRecalls, Make: "Honda", Model: "Civic", Year: "2022",
		}),
		userExample("Does the 2023 Toyota Camry have any open recalls?", models.Query{
			Type: models.QueryRecalls, Make: "Toyota", Model: "Camry", Year: "2023",
		}),
		userExample("What is the safety rating for a 2023 Toyota Camry?", models.Query{
			Type: models.QuerySafetyRating, Make: "Toyota", Model: "Camry", Year: "2023",
		}),
	}
}

func scriptedEngine() *execution.MockEngine {
	engine := execution.NewMockEngine("scripted")
	engine.Respond = func(question string) string {
		switch {
		case strings.Contains(question, "Civic"):
			return "Yes, there are 2 recalls: campaigns 23V123000 and 23V456000."
		case strings.Contains(question, "open recalls"):
			return "No recalls found for that vehicle."
		default:
			return "It earned a 5-star overall rating."
		}
	}
	return engine
}

func testProvider() *stubProvider {
	return &stubProvider{
		recalls: map[string]*models.RecallRecord{
			"Civic": {Count: 2, CampaignIDs: []string{"23V123000", "23V456000"}},
		},
		complaints: map[string]*models.ComplaintRecord{},
		ratings: map[string]models.SafetyRating{
			"Camry": {"OverallRating": "5"},
		},
	}
}

func TestRunnerRun(t *testing.T) {
	runner := NewRunner(scriptedEngine(), testProvider(),
		WithModelID("scripted"),
		WithEngineType("mock"),
		WithWorkers(2),
	)

	outcome, err := runner.Run(context.Background(), testCorpus(), "validation.jsonl")
	require.NoError(t, err)

	require.Equal(t, "scripted", outcome.ModelID)
	require.Equal(t, "mock", outcome.EngineType)
	require.Equal(t, "validation.jsonl", outcome.Corpus)
	require.Len(t, outcome.Examples, 3)

	// Both campaigns named: 0.7 + 0.3, no-recall denial: 1.0, exact rating: 1.0.
	require.InDelta(t, 1.0, outcome.Examples[0].Score, 1e-9)
	require.InDelta(t, 1.0, outcome.Examples[1].Score, 1e-9)
	require.InDelta(t, 1.0, outcome.Examples[2].Score, 1e-9)

	require.Equal(t, 3, outcome.Digest.TotalExamples)
	require.Equal(t, 3, outcome.Digest.Passed)
	require.Equal(t, 0, outcome.Digest.Errors)
	require.InDelta(t, 1.0, outcome.Digest.AvgScore, 1e-9)
	require.InDelta(t, 1.0, outcome.Digest.PassRate, 1e-9)

	require.Len(t, outcome.Digest.ByType, 2)
	require.Equal(t, models.QueryRecalls, outcome.Digest.ByType[0].QueryType)
	require.Equal(t, 2, outcome.Digest.ByType[0].Count)
	require.Equal(t, models.QuerySafetyRating, outcome.Digest.ByType[1].QueryType)

	require.Greater(t, outcome.Digest.ScoreCIUpper, 0.0)
	require.LessOrEqual(t, outcome.Digest.ScoreCILower, outcome.Digest.AvgScore)
}

func TestRunnerSampleLimit(t *testing.T) {
	runner := NewRunner(scriptedEngine(), testProvider(), WithSampleLimit(1))

	outcome, err := runner.Run(context.Background(), testCorpus(), "validation.jsonl")
	require.NoError(t, err)
	require.Len(t, outcome.Examples, 1)
	require.Equal(t, 1, outcome.Digest.TotalExamples)
}

func TestRunnerEngineFailure(t *testing.T) {
	runner := NewRunner(failEngine{}, testProvider())

	outcome, err := runner.Run(context.Background(), testCorpus(), "validation.jsonl")
	require.NoError(t, err)

	require.Equal(t, 3, outcome.Digest.Errors)
	require.Equal(t, 0, outcome.Digest.Passed)

	for _, ex := range outcome.Examples {
		require.Equal(t, "model unavailable", ex.ErrorMsg)
		require.Zero(t, ex.Score)
		require.False(t, ex.Passed)
	}
}

func TestRunnerPassThreshold(t *testing.T) {
	engine := execution.NewMockEngine("scripted")
	engine.Respond = func(string) string {
		// Says yes without naming campaigns: grades 0.7.
		return "Yes, there is a recall."
	}

	corpus := []*models.Example{
		userExample("Are there any recalls for a 2022 Honda Civic?", models.Query{
			Type: models.QueryRecalls, Make: "Honda", Model: "Civic", Year: "2022",
		}),
	}

	strict := NewRunner(engine, testProvider(), WithPassThreshold(0.8))
	outcome, err := strict.Run(context.Background(), corpus, "c")
	require.NoError(t, err)
	require.False(t, outcome.Examples[0].Passed)

	lenient := NewRunner(engine, testProvider(), WithPassThreshold(0.6))
	outcome, err = lenient.Run(context.Background(), corpus, "c")
	require.NoError(t, err)
	require.True(t, outcome.Examples[0].Passed)
}

func TestRunnerProgressEvents(t *testing.T) {
	runner := NewRunner(scriptedEngine(), testProvider(), WithWorkers(1))

	var mu sync.Mutex
	counts := map[EventType]int{}

	runner.OnProgress(func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[event.EventType]++
	})

	_, err := runner.Run(context.Background(), testCorpus(), "validation.jsonl")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, counts[EventRunStart])
	require.Equal(t, 3, counts[EventExampleComplete])
	require.Equal(t, 1, counts[EventRunComplete])
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(scriptedEngine(), testProvider())

	_, err := runner.Run(ctx, testCorpus(), "validation.jsonl")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompare(t *testing.T) {
	base := &models.EvaluationOutcome{
		ModelID:   "base",
		Timestamp: time.Now(),
		Digest:    models.EvaluationDigest{AvgScore: 0.5},
	}
	candidate := &models.EvaluationOutcome{
		ModelID:   "fine-tuned",
		Timestamp: time.Now(),
		Digest:    models.EvaluationDigest{AvgScore: 0.8},
	}

	result := Compare(base, candidate)
	require.Same(t, base, result.Base)
	require.Same(t, candidate, result.Candidate)
	require.InDelta(t, 0.3, result.Improvement, 1e-9)

	// 0.3 of the 0.5 available headroom.
	require.InDelta(t, 0.6, NormalizedGain(result), 1e-9)
}
