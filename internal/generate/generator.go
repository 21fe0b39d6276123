// Package generate produces labeled question corpora covering every
// query type the grading engine understands. Questions are rendered
// from templates over a vehicle roster; each example carries the query
// metadata needed to resolve ground truth at evaluation time.
package generate

import (
	"fmt"
	"math/rand"

	"github.com/spboyer/safegrade/internal/dataset"
	"github.com/spboyer/safegrade/internal/models"
)

// SystemPrompt seeds every generated conversation.
const SystemPrompt = "You are an automotive safety assistant with access to the NHTSA database. Answer questions about vehicle recalls, complaints, and safety ratings accurately and concisely."

// DefaultRoster is a cross-section of the US fleet: popular sedans,
// SUVs, trucks, EVs, luxury models, and older vehicles that are more
// likely to carry open recalls.
var DefaultRoster = []dataset.RosterEntry{
	{Make: "Toyota", Model: "Camry", Years: []string{"2020", "2021", "2022", "2023", "2024"}},
	{Make: "Honda", Model: "Accord", Years: []string{"2020", "2021", "2022", "2023", "2024"}},
	{Make: "Honda", Model: "Civic", Years: []string{"2019", "2020", "2021", "2022", "2023"}},
	{Make: "Nissan", Model: "Altima", Years: []string{"2019", "2020", "2021", "2022"}},
	{Make: "Hyundai", Model: "Sonata", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Toyota", Model: "RAV4", Years: []string{"2019", "2020", "2021", "2022", "2023"}},
	{Make: "Honda", Model: "CR-V", Years: []string{"2019", "2020", "2021", "2022", "2023"}},
	{Make: "Ford", Model: "Explorer", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Chevrolet", Model: "Equinox", Years: []string{"2019", "2020", "2021", "2022"}},
	{Make: "Jeep", Model: "Grand Cherokee", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Ford", Model: "F-150", Years: []string{"2019", "2020", "2021", "2022", "2023"}},
	{Make: "Chevrolet", Model: "Silverado", Years: []string{"2019", "2020", "2021", "2022"}},
	{Make: "Ram", Model: "1500", Years: []string{"2019", "2020", "2021", "2022"}},
	{Make: "Toyota", Model: "Tacoma", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Tesla", Model: "Model 3", Years: []string{"2019", "2020", "2021", "2022", "2023"}},
	{Make: "Tesla", Model: "Model Y", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Ford", Model: "Mustang Mach-E", Years: []string{"2021", "2022", "2023"}},
	{Make: "Chevrolet", Model: "Bolt", Years: []string{"2020", "2021", "2022"}},
	{Make: "BMW", Model: "3 Series", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Mercedes-Benz", Model: "C-Class", Years: []string{"2019", "2020", "2021", "2022"}},
	{Make: "Lexus", Model: "RX", Years: []string{"2020", "2021", "2022", "2023"}},
	{Make: "Audi", Model: "Q5", Years: []string{"2020", "2021", "2022"}},
	{Make: "Honda", Model: "Accord", Years: []string{"2012", "2013", "2014", "2015"}},
	{Make: "Toyota", Model: "Corolla", Years: []string{"2012", "2013", "2014", "2015"}},
	{Make: "Acura", Model: "RDX", Years: []string{"2012", "2013", "2014", "2015"}},
	{Make: "Subaru", Model: "Outback", Years: []string{"2015", "2016", "2017", "2018"}},
}

// Templates use positional verbs: %[1]s year, %[2]s make, %[3]s model.
var recallQuestions = []string{
	"Are there any recalls for a %[1]s %[2]s %[3]s?",
	"Is my %[1]s %[2]s %[3]s under any safety recalls?",
	"Check if there are recalls on a %[1]s %[2]s %[3]s",
	"Does the %[1]s %[2]s %[3]s have any open recalls?",
	"What recalls affect the %[1]s %[2]s %[3]s?",
	"I own a %[1]s %[2]s %[3]s. Are there any recalls I should know about?",
}

var complaintQuestions = []string{
	"How many complaints have been filed for the %[1]s %[2]s %[3]s?",
	"What are common problems with the %[1]s %[2]s %[3]s?",
	"Are there any reported issues with the %[1]s %[2]s %[3]s?",
	"What do owners complain about on the %[1]s %[2]s %[3]s?",
}

var safetyRatingQuestions = []string{
	"What is the safety rating for a %[1]s %[2]s %[3]s?",
	"How does the %[1]s %[2]s %[3]s perform in crash tests?",
	"Is the %[1]s %[2]s %[3]s safe?",
	"What's the NHTSA rating for the %[1]s %[2]s %[3]s?",
	"How many stars did the %[1]s %[2]s %[3]s get in safety tests?",
}

type componentSpec struct {
	Component string
	Keyword   string
	Phrases   []string
}

var componentComplaints = []componentSpec{
	{"BRAKES", "brake", []string{"brake problems", "brake issues", "braking concerns"}},
	{"AIR BAGS", "airbag", []string{"airbag issues", "airbag problems", "airbag concerns"}},
	{"ENGINE", "engine", []string{"engine problems", "engine issues", "engine trouble"}},
	{"STEERING", "steering", []string{"steering problems", "steering issues"}},
	{"ELECTRICAL SYSTEM", "electrical", []string{"electrical problems", "electrical issues"}},
	{"SUSPENSION", "suspension", []string{"suspension problems", "suspension issues"}},
}

type featureSpec struct {
	Feature  string
	Template string
}

var featureQuestions = []featureSpec{
	{"NHTSAForwardCollisionWarning", "Does the %[1]s %[2]s %[3]s have forward collision warning?"},
	{"NHTSALaneDepartureWarning", "Is lane departure warning standard on the %[1]s %[2]s %[3]s?"},
	{"NHTSAElectronicStabilityControl", "Does the %[1]s %[2]s %[3]s come with electronic stability control?"},
}

type ratingFieldSpec struct {
	Field    string
	Noun     string
	TestNoun string
}

var specificRatingFields = []ratingFieldSpec{
	{"OverallFrontCrashRating", "front crash rating", "front crash test"},
	{"OverallSideCrashRating", "side crash rating", "side impact test"},
	{"RolloverRating", "rollover rating", "rollover test"},
}

// Counts controls how many examples of each query type a set contains.
type Counts struct {
	Recalls         int
	RecallCounts    int
	Complaints      int
	ComponentIssues int
	ComplaintCounts int
	Ratings         int
	SpecificRatings int
	Features        int
	Comparisons     int
}

// TrainingCounts is the default mix for a training corpus.
var TrainingCounts = Counts{
	Recalls: 50, RecallCounts: 15, Complaints: 40, ComponentIssues: 30,
	ComplaintCounts: 15, Ratings: 40, SpecificRatings: 20, Features: 20,
	Comparisons: 15,
}

// ValidationCounts is a smaller mix that still covers every type.
var ValidationCounts = Counts{
	Recalls: 10, RecallCounts: 5, Complaints: 8, ComponentIssues: 6,
	ComplaintCounts: 5, Ratings: 8, SpecificRatings: 4, Features: 4,
	Comparisons: 5,
}

// Generator renders corpora deterministically for a given seed.
type Generator struct {
	rng    *rand.Rand
	roster []dataset.RosterEntry
}

// New creates a Generator over roster. A nil or empty roster falls
// back to DefaultRoster.
func New(seed int64, roster []dataset.RosterEntry) *Generator {
	if len(roster) == 0 {
		roster = DefaultRoster
	}

	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		roster: roster,
	}
}

// Generate renders a shuffled corpus with the given per-type counts.
func (g *Generator) Generate(counts Counts) []*models.Example {
	var examples []*models.Example
	examples = append(examples, g.recallExamples(counts.Recalls)...)
	examples = append(examples, g.recallCountExamples(counts.RecallCounts)...)
	examples = append(examples, g.complaintExamples(counts.Complaints)...)
	examples = append(examples, g.componentComplaintExamples(counts.ComponentIssues)...)
	examples = append(examples, g.complaintCountExamples(counts.ComplaintCounts)...)
	examples = append(examples, g.safetyRatingExamples(counts.Ratings)...)
	examples = append(examples, g.specificRatingExamples(counts.SpecificRatings)...)
	examples = append(examples, g.safetyFeatureExamples(counts.Features)...)
	examples = append(examples, g.comparisonExamples(counts.Comparisons)...)

	g.rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	return examples
}

// Breakdown tallies a corpus by query type.
func Breakdown(examples []*models.Example) map[models.QueryType]int {
	byType := map[models.QueryType]int{}

	for _, ex := range examples {
		byType[ex.Query.Type]++
	}

	return byType
}

func (g *Generator) recallExamples(count int) []*models.Example {
	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(g.roster)
		question := g.render(recallQuestions, year, entry)
		examples = append(examples, newExample(question, models.Query{
			Type: models.QueryRecalls,
			Make: entry.Make, Model: entry.Model, Year: year,
		}))
	}

	return examples
}

func (g *Generator) recallCountExamples(count int) []*models.Example {
	templates := []string{
		"How many recalls does the %[1]s %[2]s %[3]s have?",
		"What's the total number of recalls for a %[1]s %[2]s %[3]s?",
	}

	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(g.roster)
		examples = append(examples, newExample(g.render(templates, year, entry), models.Query{
			Type: models.QueryRecallCount,
			Make: entry.Make, Model: entry.Model, Year: year,
		}))
	}

	return examples
}

func (g *Generator) complaintExamples(count int) []*models.Example {
	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(g.roster)
		examples = append(examples, newExample(g.render(complaintQuestions, year, entry), models.Query{
			Type: models.QueryComplaints,
			Make: entry.Make, Model: entry.Model, Year: year,
		}))
	}

	return examples
}

func (g *Generator) componentComplaintExamples(count int) []*models.Example {
	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(g.roster)
		spec := componentComplaints[g.rng.Intn(len(componentComplaints))]
		phrase := spec.Phrases[g.rng.Intn(len(spec.Phrases))]

		vehicle := fmt.Sprintf("%s %s %s", year, entry.Make, entry.Model)
		questions := []string{
			fmt.Sprintf("Are there any %s reported for the %s?", phrase, vehicle),
			fmt.Sprintf("Have owners reported %s issues with the %s?", spec.Keyword, vehicle),
			fmt.Sprintf("What %s complaints exist for the %s?", spec.Keyword, vehicle),
		}

		examples = append(examples, newExample(questions[g.rng.Intn(len(questions))], models.Query{
			Type: models.QueryComplaints,
			Make: entry.Make, Model: entry.Model, Year: year,
			ComponentFilter: spec.Component,
		}))
	}

	return examples
}

func (g *Generator) complaintCountExamples(count int) []*models.Example {
	templates := []string{
		"How many complaints have been filed for the %[1]s %[2]s %[3]s?",
		"What's the complaint count for a %[1]s %[2]s %[3]s?",
	}

	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(g.roster)
		examples = append(examples, newExample(g.render(templates, year, entry), models.Query{
			Type: models.QueryComplaintCount,
			Make: entry.Make, Model: entry.Model, Year: year,
		}))
	}

	return examples
}

func (g *Generator) safetyRatingExamples(count int) []*models.Example {
	// NCAP coverage thins out for older model years, so rating
	// questions stick to recent vehicles.
	recent := recentEntries(g.roster, 2020)
	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(recent)
		examples = append(examples, newExample(g.render(safetyRatingQuestions, year, entry), models.Query{
			Type: models.QuerySafetyRating,
			Make: entry.Make, Model: entry.Model, Year: year,
		}))
	}

	return examples
}

func (g *Generator) specificRatingExamples(count int) []*models.Example {
	recent := recentEntries(g.roster, 2020)
	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(recent)
		field := specificRatingFields[g.rng.Intn(len(specificRatingFields))]

		vehicle := fmt.Sprintf("%s %s %s", year, entry.Make, entry.Model)
		questions := []string{
			fmt.Sprintf("What is the %s for the %s?", field.Noun, vehicle),
			fmt.Sprintf("How did the %s perform in the %s?", vehicle, field.TestNoun),
		}

		examples = append(examples, newExample(questions[g.rng.Intn(len(questions))], models.Query{
			Type: models.QuerySafetyRating,
			Make: entry.Make, Model: entry.Model, Year: year,
			RatingField: field.Field,
		}))
	}

	return examples
}

func (g *Generator) safetyFeatureExamples(count int) []*models.Example {
	recent := recentEntries(g.roster, 2022)
	examples := make([]*models.Example, 0, count)

	for i := 0; i < count; i++ {
		entry, year := g.pickVehicle(recent)
		spec := featureQuestions[g.rng.Intn(len(featureQuestions))]
		question := fmt.Sprintf(spec.Template, year, entry.Make, entry.Model)

		examples = append(examples, newExample(question, models.Query{
			Type: models.QuerySafetyFeatures,
			Make: entry.Make, Model: entry.Model, Year: year,
			Feature: spec.Feature,
		}))
	}

	return examples
}

func (g *Generator) comparisonExamples(count int) []*models.Example {
	recent := recentEntries(g.roster, 2022)
	examples := make([]*models.Example, 0, count)

	// Year-range rosters can split one model across several entries, so
	// entry count alone does not guarantee a contrasting vehicle exists.
	if distinctModels(recent) < 2 {
		return examples
	}

	for i := 0; i < count; i++ {
		a := recent[g.rng.Intn(len(recent))]
		b := recent[g.rng.Intn(len(recent))]

		for b.Make == a.Make && b.Model == a.Model {
			b = recent[g.rng.Intn(len(recent))]
		}

		year := g.sharedYear(a, b)
		pair := fmt.Sprintf("%s %s %s and %s %s %s", year, a.Make, a.Model, year, b.Make, b.Model)
		questions := []string{
			fmt.Sprintf("Compare the safety ratings of the %s.", pair),
			fmt.Sprintf("Which is safer: %s %s %s or %s %s %s?", year, a.Make, a.Model, year, b.Make, b.Model),
			fmt.Sprintf("How do the crash test ratings compare between %s %s and %s %s?", a.Make, a.Model, b.Make, b.Model),
		}

		examples = append(examples, newExample(questions[g.rng.Intn(len(questions))], models.Query{
			Type: models.QueryComparison,
			Vehicles: []models.Vehicle{
				{Make: a.Make, Model: a.Model, Year: year},
				{Make: b.Make, Model: b.Model, Year: year},
			},
		}))
	}

	return examples
}

// sharedYear prefers a model year both vehicles were sold in, falling
// back to one of a's years.
func (g *Generator) sharedYear(a, b dataset.RosterEntry) string {
	bYears := map[string]bool{}
	for _, y := range b.Years {
		bYears[y] = true
	}

	var common []string
	for _, y := range a.Years {
		if bYears[y] {
			common = append(common, y)
		}
	}

	if len(common) == 0 {
		common = a.Years
	}

	return common[g.rng.Intn(len(common))]
}

func distinctModels(entries []dataset.RosterEntry) int {
	seen := map[string]bool{}
	for _, entry := range entries {
		seen[entry.Make+"\x00"+entry.Model] = true
	}
	return len(seen)
}

func (g *Generator) pickVehicle(entries []dataset.RosterEntry) (dataset.RosterEntry, string) {
	entry := entries[g.rng.Intn(len(entries))]
	return entry, entry.Years[g.rng.Intn(len(entry.Years))]
}

func (g *Generator) render(templates []string, year string, entry dataset.RosterEntry) string {
	return fmt.Sprintf(templates[g.rng.Intn(len(templates))], year, entry.Make, entry.Model)
}

func recentEntries(roster []dataset.RosterEntry, minYear int) []dataset.RosterEntry {
	var recent []dataset.RosterEntry

	for _, entry := range roster {
		var years []string

		for _, y := range entry.Years {
			if yearAtLeast(y, minYear) {
				years = append(years, y)
			}
		}

		if len(years) > 0 {
			recent = append(recent, dataset.RosterEntry{Make: entry.Make, Model: entry.Model, Years: years})
		}
	}

	if len(recent) == 0 {
		return roster
	}

	return recent
}

func yearAtLeast(year string, min int) bool {
	var n int
	if _, err := fmt.Sscanf(year, "%d", &n); err != nil {
		return false
	}

	return n >= min
}

func newExample(question string, q models.Query) *models.Example {
	return &models.Example{
		Messages: []models.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: question},
		},
		Query: q,
	}
}
