package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"loan-advisor/domain"
)

const maxBodyBytes = 1 << 20

// Schemas check request shape only. Range rules live in the service layer so
// every caller gets them.
const applicationSchemaJSON = `{
  "type": "object",
  "required": ["income", "credit_score", "loan_amount", "dti_ratio", "employment_status"],
  "properties": {
    "income":            {"type": "number"},
    "credit_score":      {"type": "integer"},
    "loan_amount":       {"type": "number"},
    "dti_ratio":         {"type": "number"},
    "employment_status": {"type": "string"},
    "purpose":           {"type": "string", "maxLength": 200}
  }
}`

const chatSchemaJSON = `{
  "type": "object",
  "required": ["message"],
  "properties": {
    "message":    {"type": "string", "minLength": 1, "maxLength": 4000},
    "session_id": {"type": "string"}
  }
}`

var (
	applicationSchema = mustSchema(applicationSchemaJSON)
	chatSchema        = mustSchema(chatSchemaJSON)
)

func mustSchema(raw string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return s
}

// readValidatedBody reads the request body and checks it against schema.
// Violations come back as domain.ValidationErrors keyed by field.
func readValidatedBody(r *http.Request, schema *gojsonschema.Schema) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrInvalidArgument, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request body", domain.ErrInvalidArgument)
	}
	if result.Valid() {
		return body, nil
	}

	errs := domain.ValidationErrors{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		if _, seen := errs[field]; !seen {
			errs[field] = desc.Description()
		}
	}
	return nil, errs
}
