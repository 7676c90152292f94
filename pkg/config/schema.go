package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema catches structural mistakes in hand-written YAML (misspelled
// sections, wrong value types) before mapstructure silently drops them.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "corpus": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_names": {"type": "integer"},
        "max_name_length": {"type": "integer"}
      }
    },
    "report": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": {"type": "string", "enum": ["table", "json", "yaml"]},
        "top_tokens": {"type": "integer"},
        "no_color": {"type": "boolean"}
      }
    },
    "chart": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "title": {"type": "string"},
        "subtitle": {"type": "string"}
      }
    },
    "observability": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "otlp_endpoint": {"type": "string"},
        "otlp_insecure": {"type": "boolean"},
        "sample_ratio": {"type": "number"},
        "log_level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "log_json": {"type": "boolean"},
        "metrics_addr": {"type": "string"}
      }
    }
  }
}`

// validateSchema validates the merged settings tree against configSchema.
func validateSchema(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
}
