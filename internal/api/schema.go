package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const submitResponseSchema = `{
  "type": "object",
  "required": ["audit_id", "status"],
  "properties": {
    "audit_id": {"type": "string", "minLength": 1},
    "status":   {"type": "string"},
    "message":  {"type": ["string", "null"]}
  }
}`

const auditResultSchema = `{
  "type": "object",
  "required": ["audit_id", "maturity_score", "status"],
  "properties": {
    "audit_id":             {"type": "string", "minLength": 1},
    "maturity_score":       {"type": "number", "minimum": 0, "maximum": 100},
    "automation_potential": {"type": "number"},
    "roi_projection":       {"type": "number"},
    "strengths":            {"type": ["array", "null"], "items": {"type": "string"}},
    "weaknesses":           {"type": ["array", "null"], "items": {"type": "string"}},
    "opportunities":        {"type": ["array", "null"], "items": {"type": "string"}},
    "recommendations":      {"type": ["array", "null"], "items": {"type": "string"}},
    "process_scores":       {"type": ["object", "null"], "additionalProperties": {"type": "number"}},
    "priority_areas":       {"type": ["array", "null"], "items": {"type": "string"}},
    "pdf_report_url":       {"type": ["string", "null"]},
    "status":               {"type": "string"}
  }
}`

var (
	submitResponseValidator = mustSchema(submitResponseSchema)
	auditResultValidator    = mustSchema(auditResultSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// checkShape validates a response body against schema
func checkShape(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedResponse, strings.Join(problems, "; "))
}
