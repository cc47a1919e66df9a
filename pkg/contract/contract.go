// Package contract describes the intake API as an OpenAPI 3 document derived
// from the form schemas, so the request bodies documented for the backend are
// the ones the forms actually send.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Options fills the document header.
type Options struct {
	Title     string
	Version   string
	ServerURL string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Intake API"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	return o
}

// Build assembles and validates the document. Definitions without an API
// path are skipped.
func Build(ctx context.Context, defs []intake.Definition, opts Options) (*openapi3.T, error) {
	opts = opts.withDefaults()
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Paths: openapi3.NewPaths(),
	}
	if opts.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}

	for _, def := range defs {
		if def.Path == "" || def.Schema == nil {
			continue
		}
		doc.Paths.Set(def.Path, &openapi3.PathItem{Post: operation(def)})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: invalid document: %w", err)
	}
	return doc, nil
}

func operation(def intake.Definition) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = "registrar_" + def.ID
	op.Summary = def.Title
	op.Tags = []string{def.ID}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(BodySchema(def.Schema)),
	}

	envelope := Envelope()
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Respuesta de la API; el campo status indica 201 (creado) o 200 (actualizado).").
				WithJSONSchema(envelope),
		}),
		openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Registro creado.").WithJSONSchema(envelope),
		}),
		openapi3.WithName("default", openapi3.NewResponse().
			WithDescription("Solicitud rechazada.").
			WithJSONSchema(envelope)),
	)
	return op
}

// Envelope is the response shape shared by every endpoint.
func Envelope() *openapi3.Schema {
	errs := openapi3.NewObjectSchema()
	errs.Description = "Mensajes por campo."
	return openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewIntegerSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("errors", errs)
}

// BodySchema converts a form schema into the JSON schema of its request
// body. Unions become a oneOf over their two variants.
func BodySchema(s *schema.Schema) *openapi3.Schema {
	body := objectSchema(s.Fields)
	body.Title = s.Name

	for _, union := range s.Unions {
		variants := make([]*openapi3.Schema, 0, 2)
		for _, tag := range []bool{true, false} {
			variant := objectSchema(union.Variant(tag))
			disc := openapi3.NewBoolSchema().WithEnum(tag)
			disc.Description = union.Discriminant.Label
			variant.WithProperty(union.Discriminant.Name, disc)
			variant.Required = append([]string{union.Discriminant.Name}, variant.Required...)
			variants = append(variants, variant)
		}
		body.AllOf = append(body.AllOf, openapi3.NewOneOfSchema(variants...).NewRef())
	}
	return body
}

func objectSchema(fields []schema.Field) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	for _, field := range fields {
		obj.WithProperty(field.Name, fieldSchema(field))
		if !field.Optional {
			obj.Required = append(obj.Required, field.Name)
		}
	}
	return obj
}

func fieldSchema(field schema.Field) *openapi3.Schema {
	var out *openapi3.Schema
	switch field.Kind {
	case schema.KindEnum:
		options := field.NormalizedOptions()
		values := make([]any, len(options))
		for i, option := range options {
			values[i] = option
		}
		out = openapi3.NewStringSchema().WithEnum(values...)
	case schema.KindInteger:
		out = openapi3.NewIntegerSchema()
		if field.Min != nil {
			out.WithMin(*field.Min)
		}
	case schema.KindNumber:
		out = openapi3.NewFloat64Schema()
		if field.Min != nil {
			out.WithMin(*field.Min)
		}
	case schema.KindBoolean:
		out = openapi3.NewBoolSchema()
	case schema.KindDate:
		out = openapi3.NewDateTimeSchema()
	case schema.KindList:
		out = openapi3.NewArraySchema()
		if field.Item != nil {
			out.WithItems(objectSchema(field.Item.Fields))
		}
		if field.MinItems > 0 {
			out.WithMinItems(int64(field.MinItems))
		}
	default:
		out = openapi3.NewStringSchema()
		if field.Kind == schema.KindEmail {
			out.WithFormat("email")
		}
		if field.MinLength > 0 && !field.Optional {
			out.WithMinLength(int64(field.MinLength))
		}
		if field.MaxLength > 0 {
			out.WithMaxLength(int64(field.MaxLength))
		}
		if field.Pattern != nil {
			out.WithPattern(optionalPattern(field))
		}
	}
	out.Description = field.Label
	return out
}

// optionalPattern lets the empty string through for optional fields, which
// the validator treats as absent.
func optionalPattern(field schema.Field) string {
	if !field.Optional {
		return field.Pattern.String()
	}
	return "^$|" + field.Pattern.String()
}

// JSON encodes doc with indentation.
func JSON(doc *openapi3.T) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("contract: encode json: %w", err)
	}
	return out, nil
}

// YAML encodes doc as YAML.
func YAML(doc *openapi3.T) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("contract: encode yaml: %w", err)
	}
	return out, nil
}
