// Package schemas embeds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// ExampleSchemaJSON is the schema for one corpus example record.
//
//go:embed example.schema.json
var ExampleSchemaJSON string
