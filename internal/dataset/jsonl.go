// Package dataset reads and writes the corpora surrounding the grader:
// newline-delimited JSON training/validation examples and CSV vehicle
// rosters.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spboyer/safegrade/internal/models"
)

// MaxLineBytes bounds a single corpus record. Complaint-heavy examples are
// long, but anything past this is a malformed file, not a record. The schema
// validator shares this bound so both layers agree on what a record is.
const MaxLineBytes = 4 * 1024 * 1024

// LoadExamples reads a JSONL corpus. Blank lines are skipped; a limit of 0
// means no limit.
func LoadExamples(path string, limit int) ([]*models.Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var examples []*models.Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ex models.Example
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("jsonl: %s line %d: %w", path, lineNo, err)
		}
		examples = append(examples, &ex)

		if limit > 0 && len(examples) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: reading %s: %w", path, err)
	}
	return examples, nil
}

// WriteExamples writes a JSONL corpus, one example per line.
func WriteExamples(path string, examples []*models.Example) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("jsonl: create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for i, ex := range examples {
		data, err := json.Marshal(ex)
		if err != nil {
			f.Close() //nolint:errcheck
			return fmt.Errorf("jsonl: marshal example %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			f.Close() //nolint:errcheck
			return fmt.Errorf("jsonl: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("jsonl: flush %s: %w", path, err)
	}
	return f.Close()
}
