package intake

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/schema"
)

// Form identifiers, also used as CLI sub-commands.
const (
	FormApplicant   = "postulante"
	FormSpouse      = "conyuge"
	FormVaccination = "vacunas"
)

// API paths relative to the configured base address.
const (
	ApplicantPath = "/api/postulante"
	SpousePath    = "/api/conyuge"
)

// Trigger names when a form re-validates.
type Trigger string

const (
	TriggerChange Trigger = "change"
	TriggerBlur   Trigger = "blur"
)

// Definition bundles what a front end needs to run one form.
type Definition struct {
	ID       string
	Title    string
	Subtitle string
	// Path is the API path the form posts to; empty when the form has no
	// remote endpoint yet.
	Path     string
	Schema   *schema.Schema
	Defaults func() schema.Record
	Trigger  Trigger
	// LinkField is prefilled read-only from the route identifier.
	LinkField string
}

// Applicant describes the applicant form. It validates on blur.
func Applicant(catalog Catalog, opts ...SchemaOption) Definition {
	return Definition{
		ID:       FormApplicant,
		Title:    "Información personal.",
		Subtitle: "Datos básicos.",
		Path:     ApplicantPath,
		Schema:   ApplicantSchema(catalog, opts...),
		Defaults: ApplicantDefaults,
		Trigger:  TriggerBlur,
	}
}

// Spouse describes the spouse form. It validates on every change.
func Spouse(catalog Catalog, opts ...SchemaOption) Definition {
	return Definition{
		ID:        FormSpouse,
		Title:     "Información personal del cónyuge.",
		Subtitle:  "Datos básicos.",
		Path:      SpousePath,
		Schema:    SpouseSchema(catalog, opts...),
		Defaults:  SpouseDefaults,
		Trigger:   TriggerChange,
		LinkField: FieldApplicantDocument,
	}
}

// Vaccination describes the COVID vaccination form.
func Vaccination(catalog Catalog, opts ...SchemaOption) Definition {
	return Definition{
		ID:        FormVaccination,
		Title:     "Vacunas Covid",
		Subtitle:  "Historial de vacunas contra el Covid-19.",
		Schema:    VaccinationSchema(catalog, opts...),
		Defaults:  VaccinationDefaults,
		Trigger:   TriggerChange,
		LinkField: FieldApplicantDocument,
	}
}

// Lookup returns the definition registered under id.
func Lookup(id string, catalog Catalog, opts ...SchemaOption) (Definition, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case FormApplicant:
		return Applicant(catalog, opts...), nil
	case FormSpouse:
		return Spouse(catalog, opts...), nil
	case FormVaccination:
		return Vaccination(catalog, opts...), nil
	default:
		return Definition{}, fmt.Errorf("intake: unknown form %q", id)
	}
}
