// Package schemas provides JSON Schema validation for research payloads
// crossing the provider boundary.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ResearchBundleSchema is the contract a provider's JSON output must satisfy
// before it is allowed into the pipeline or either cache.
const ResearchBundleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "ResearchBundle",
  "type": "object",
  "required": ["topic", "content"],
  "properties": {
    "topic": {"type": "string", "minLength": 1},
    "content": {"type": "string", "minLength": 1},
    "sources": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["url"],
        "properties": {
          "url": {"type": "string", "minLength": 1},
          "title": {"type": "string"}
        }
      }
    },
    "seo_data": {
      "type": "object",
      "properties": {
        "primary_keyword": {"type": "string"},
        "secondary_keywords": {"type": "array", "items": {"type": "string"}},
        "search_volume": {"type": "integer", "minimum": 0},
        "keyword_difficulty": {"type": "number", "minimum": 0, "maximum": 100},
        "suggested_title_tags": {"type": "array", "items": {"type": "string"}}
      }
    },
    "serp_analysis": {
      "type": "object",
      "properties": {
        "top_results": {"type": "array"},
        "avg_word_count": {"type": "integer", "minimum": 0},
        "common_headings": {"type": "array", "items": {"type": "string"}},
        "content_gaps": {"type": "array", "items": {"type": "string"}}
      }
    },
    "ai_insights": {
      "type": "object",
      "properties": {
        "key_takeaways": {"type": "array", "items": {"type": "string"}},
        "unique_angles": {"type": "array", "items": {"type": "string"}},
        "common_questions": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// ValidationError represents a schema validation failure with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateResearchBundle validates raw provider JSON against the research
// bundle schema. Returns a *ValidationError describing each failed field.
func ValidateResearchBundle(jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(ResearchBundleSchema)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to run schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
