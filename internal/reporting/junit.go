package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/spboyer/safegrade/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluation run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one graded example.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents an answer that graded below the pass threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an engine error during evaluation.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts an EvaluationOutcome to JUnit XML format.
func ConvertToJUnit(outcome *models.EvaluationOutcome) *JUnitTestSuites {
	durationSec := float64(outcome.DurationMs) / 1000.0
	failures := outcome.Digest.TotalExamples - outcome.Digest.Passed - outcome.Digest.Errors
	if failures < 0 {
		failures = 0
	}

	suite := JUnitTestSuite{
		Name:      outcome.Corpus,
		Tests:     outcome.Digest.TotalExamples,
		Failures:  failures,
		Errors:    outcome.Digest.Errors,
		Time:      durationSec,
		Timestamp: outcome.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "model", Value: outcome.ModelID},
			{Name: "engine", Value: outcome.EngineType},
			{Name: "avg_score", Value: fmt.Sprintf("%.4f", outcome.Digest.AvgScore)},
			{Name: "pass_rate", Value: fmt.Sprintf("%.4f", outcome.Digest.PassRate)},
		},
	}

	for i := range outcome.Examples {
		suite.TestCases = append(suite.TestCases, convertExample(outcome.ModelID, &outcome.Examples[i]))
	}

	return &JUnitTestSuites{
		Tests:      outcome.Digest.TotalExamples,
		Failures:   failures,
		Errors:     outcome.Digest.Errors,
		Time:       durationSec,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertExample(model string, ex *models.ExampleOutcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      fmt.Sprintf("[%03d] %s", ex.Index, ex.QueryType),
		Classname: model,
	}

	switch {
	case ex.ErrorMsg != "":
		tc.Error = &JUnitError{
			Message: ex.ErrorMsg,
			Type:    "EngineError",
		}
	case !ex.Passed:
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("score=%.2f", ex.Score),
			Type:    "GradeBelowThreshold",
			Body:    fmt.Sprintf("Q: %s\nA: %s", ex.Question, ex.Answer),
		}
	}

	return tc
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(outcome *models.EvaluationOutcome, path string) error {
	suites := ConvertToJUnit(outcome)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
