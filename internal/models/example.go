package models

import (
	"encoding/json"
	"fmt"
)

// Message is one role/content pair in a chat-format training example.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Example is one JSONL corpus record: the chat messages presented to the
// model plus the query metadata the grader needs. Extra keys are preserved so
// corpora written by newer generators round-trip untouched.
type Example struct {
	Messages []Message `json:"messages"`
	Query    Query     `json:"-"`

	raw map[string]json.RawMessage
}

// Question returns the last user message, which is the question under test.
func (e *Example) Question() string {
	for i := len(e.Messages) - 1; i >= 0; i-- {
		if e.Messages[i].Role == "user" {
			return e.Messages[i].Content
		}
	}
	return ""
}

// UnmarshalJSON decodes the messages plus the flat query metadata that sits
// alongside them in the same object.
func (e *Example) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["messages"]; ok {
		if err := json.Unmarshal(raw, &e.Messages); err != nil {
			return fmt.Errorf("messages: %w", err)
		}
	}

	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return fmt.Errorf("query metadata: %w", err)
	}
	e.Query = q
	e.raw = fields
	return nil
}

// MarshalJSON writes the example back as a single flat object, messages and
// query metadata side by side, matching the corpus format.
func (e *Example) MarshalJSON() ([]byte, error) {
	out := map[string]any{}

	// carry through unrecognized keys first so known fields win below
	for k, v := range e.raw {
		out[k] = v
	}

	out["messages"] = e.Messages
	out["query_type"] = e.Query.Type

	setIf := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	setIf("make", e.Query.Make)
	setIf("model", e.Query.Model)
	setIf("year", e.Query.Year)
	setIf("component_filter", e.Query.ComponentFilter)
	setIf("rating_field", e.Query.RatingField)
	setIf("feature", e.Query.Feature)
	if len(e.Query.Vehicles) > 0 {
		out["vehicles"] = e.Query.Vehicles
	}

	return json.Marshal(out)
}
