// Package validation produces issue reports for whole records, combining the
// form schema with the wire contract derived from it.
package validation

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-intake/pkg/contract"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Issue sources.
const (
	SourceSchema   = "schema"
	SourceContract = "contract"
)

// Issue represents a validation error with location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Report captures the outcome of Check.
type Report struct {
	Valid  bool          `json:"valid"`
	Data   schema.Record `json:"data,omitempty"`
	Issues []Issue       `json:"issues,omitempty"`
}

// Check validates record against s. When the record passes, the normalised
// data is also checked against the request body contract, so a report is
// only valid if the API would accept the payload as sent.
func Check(s *schema.Schema, record schema.Record) Report {
	result := s.Validate(record)
	if !result.Success {
		report := Report{}
		for _, path := range result.Errors.Paths() {
			report.Issues = append(report.Issues, Issue{
				Path:    path,
				Field:   label(s, path),
				Message: result.Errors[path],
				Source:  SourceSchema,
			})
		}
		return report
	}

	issues, err := contractIssues(contract.BodySchema(s), result.Data)
	if err != nil {
		return Report{Issues: []Issue{{Message: err.Error(), Source: SourceContract}}}
	}
	for i := range issues {
		issues[i].Field = label(s, issues[i].Path)
	}
	return Report{Valid: len(issues) == 0, Data: result.Data, Issues: issues}
}

func contractIssues(body *openapi3.Schema, data schema.Record) ([]Issue, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	err = body.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil, nil
	}
	var out []Issue
	collect(err, &out)
	return out, nil
}

func collect(err error, out *[]Issue) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			collect(inner, out)
		}
		return
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		message := strings.TrimSpace(schemaErr.Reason)
		if message == "" {
			message = strings.TrimSpace(schemaErr.Error())
		}
		*out = append(*out, Issue{
			Path:    fieldPath(schemaErr.JSONPointer()),
			Message: message,
			Source:  SourceContract,
		})
		return
	}
	*out = append(*out, Issue{Message: strings.TrimSpace(err.Error()), Source: SourceContract})
}

// fieldPath joins JSON pointer segments into the dotted form paths used by
// the form controller.
func fieldPath(pointer []string) string {
	out := make([]string, 0, len(pointer))
	for _, segment := range pointer {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}

func label(s *schema.Schema, path string) string {
	if path == "" {
		return ""
	}
	name, _, _ := strings.Cut(path, ".")
	if field, ok := s.Lookup(name); ok {
		return render.Label(field)
	}
	return ""
}
