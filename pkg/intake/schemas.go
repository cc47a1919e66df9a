package intake

import (
	"regexp"
	"time"

	"github.com/goliatone/go-intake/pkg/schema"
)

// Variant selects one of the two applicant/spouse rule sets that drifted
// apart in earlier iterations of the forms.
type Variant string

const (
	// Strict requires age >= 18 and upper-cases address fields.
	Strict Variant = "strict"
	// Lenient only requires a birth date and preserves address case.
	Lenient Variant = "lenient"
)

// AdultAge is the minimum applicant and spouse age under Strict.
const AdultAge = 18

var landlinePattern = regexp.MustCompile(`^(?:\+57)?\d{7,10}$`)

const landlineMessage = "El teléfono fijo debe tener 7 a 10 dígitos, con o sin prefijo +57."

type config struct {
	variant Variant
	clock   func() time.Time
}

// SchemaOption tunes the form schemas.
type SchemaOption func(*config)

// WithVariant picks the rule set; unknown values fall back to Strict.
func WithVariant(v Variant) SchemaOption {
	return func(c *config) {
		if v == Lenient || v == Strict {
			c.variant = v
		}
	}
}

// WithClock fixes "now" for the age bound.
func WithClock(fn func() time.Time) SchemaOption {
	return func(c *config) {
		if fn != nil {
			c.clock = fn
		}
	}
}

func newConfig(opts []SchemaOption) config {
	cfg := config{variant: Strict, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ParseVariant maps configuration strings onto a Variant.
func ParseVariant(raw string) (Variant, bool) {
	switch Variant(raw) {
	case Strict, "":
		return Strict, true
	case Lenient:
		return Lenient, true
	default:
		return Strict, false
	}
}

func text(name, label string, min, max int) schema.Field {
	return schema.String(name, label).Length(min, max).Upper()
}

func optionalText(name, label string, max int) schema.Field {
	return schema.String(name, label).Length(0, max).Upper().AsOptional()
}

func (c config) address(name, label string, optional bool) schema.Field {
	field := schema.String(name, label).Length(1, 100).Upper()
	if c.variant == Lenient {
		field = field.Preserve()
	}
	if optional {
		field = field.AsOptional()
	}
	return field
}

func documentNumber(name, label string) schema.Field {
	return schema.String(name, label).Length(6, 10)
}

func landline(name string) schema.Field {
	return schema.String(name, "El teléfono fijo").Match(landlinePattern, landlineMessage).AsOptional()
}

func (c config) birthDate() schema.Field {
	field := schema.Date(FieldBirthDate, "La fecha de nacimiento").WithMessages(schema.Messages{
		Required: "La fecha de nacimiento es requerida.",
		Type:     "La fecha de nacimiento es requerida.",
	})
	if c.variant == Strict {
		field = field.NotAfter(schema.AdultCutoff(AdultAge), "Debes ser mayor de 18 años.")
	}
	return field
}

func (c config) identity(catalog Catalog) []schema.Field {
	return []schema.Field{
		schema.Enum(FieldDocumentType, "El tipo de documento", Values(catalog.DocumentTypes)).
			WithMessages(schema.Messages{Option: "Seleccione un tipo de documento."}),
		documentNumber(FieldDocumentNumber, "El número de documento"),
		text(FieldFirstName, "El primer nombre", 1, 50),
		optionalText(FieldMiddleName, "El segundo nombre", 50),
		text(FieldFirstSurname, "El primer apellido", 1, 50),
		optionalText(FieldSecondSurname, "El segundo apellido", 50),
		c.birthDate(),
		text(FieldBirthCountry, "El país de nacimiento", 1, 100),
		text(FieldBirthState, "El departamento de nacimiento", 1, 100),
		text(FieldBirthCity, "La ciudad de nacimiento", 1, 100),
	}
}

func (c config) residence() []schema.Field {
	return []schema.Field{
		text(FieldResidenceNeighborhood, "El barrio de residencia", 1, 100),
		c.address(FieldResidenceAddress, "La dirección de residencia", false),
		text(FieldResidenceCity, "La ciudad de residencia", 1, 100),
		text(FieldResidenceState, "El departamento de residencia", 1, 100),
	}
}

func (c config) correspondence() []schema.Field {
	return []schema.Field{
		optionalText(FieldMailNeighborhood, "El barrio de correspondencia", 100),
		c.address(FieldMailAddress, "La dirección de correspondencia", true),
		optionalText(FieldMailCity, "La ciudad de correspondencia", 100),
		optionalText(FieldMailState, "El departamento de correspondencia", 100),
	}
}

func contact() []schema.Field {
	return []schema.Field{
		schema.String(FieldMobile, "El celular").Length(10, 10),
		schema.Email(FieldEmail, "El correo").Length(1, 100).
			WithMessages(schema.Messages{Email: "Correo electrónico inválido. Ejemplo: usuario@correo.com"}),
		landline(FieldLandline),
	}
}

// ApplicantSchema builds the applicant (postulante) schema.
func ApplicantSchema(catalog Catalog, opts ...SchemaOption) *schema.Schema {
	cfg := newConfig(opts)

	fields := cfg.identity(catalog)
	fields = append(fields, cfg.residence()...)
	fields = append(fields, cfg.correspondence()...)
	fields = append(fields,
		schema.Enum(FieldSex, "El sexo", Values(catalog.Sexes)).
			WithMessages(schema.Messages{Option: "Seleccione su sexo."}),
		schema.Enum(FieldBloodType, "El tipo de sangre", Values(catalog.BloodTypes)).
			WithMessages(schema.Messages{Option: "Seleccione su tipo de sangre."}),
		schema.Enum(FieldMaritalStatus, "El estado civil", Values(catalog.MaritalStatuses)).
			WithMessages(schema.Messages{Option: "Seleccione su estado civil."}),
		schema.String(FieldDependents, "Las personas a cargo").Length(1, 10).
			WithMessages(schema.Messages{MinLength: "Este campo es obligatorio y debe tener al menos 1 carácter."}),
	)
	fields = append(fields, contact()...)

	children := schema.Union{
		Discriminant: schema.Boolean(FieldHasChildren, "¿Tiene hijos?"),
		WhenTrue: []schema.Field{
			schema.Integer(FieldChildren, "El número de hijos").
				AtLeast(1, "Debe tener al menos 1 hijo.").
				WithMessages(schema.Messages{
					Required: "Este campo debe ser mayor que 0.",
					Type:     "Ingrese un número entero de hijos.",
				}),
		},
	}

	return schema.New("postulante", fields, []schema.Union{children}, schema.WithClock(cfg.clock))
}

// SpouseSchema builds the spouse (conyuge) schema. The record links to its
// applicant through numero_documento_postulante.
func SpouseSchema(catalog Catalog, opts ...SchemaOption) *schema.Schema {
	cfg := newConfig(opts)

	fields := cfg.identity(catalog)
	fields = append(fields, cfg.residence()...)
	fields = append(fields, contact()...)
	fields = append(fields, documentNumber(FieldApplicantDocument, "El número de documento del postulante"))

	job := schema.Union{
		Discriminant: schema.Boolean(FieldHasJob, "¿El cónyuge trabaja?"),
		WhenTrue: []schema.Field{
			text(FieldEmployerName, "El nombre de la empresa", 1, 100),
			cfg.address(FieldEmployerAddress, "La dirección de la empresa", false),
			text(FieldEmployerType, "El tipo de empresa", 1, 100),
			landline(FieldEmployerPhone),
			text(FieldEmployerCity, "La ciudad de la empresa", 1, 100),
			text(FieldJobTitle, "El cargo del cónyuge en la empresa", 1, 100),
		},
	}

	return schema.New("conyuge", fields, []schema.Union{job}, schema.WithClock(cfg.clock))
}

// DoseSchema validates one entry of the vaccination list.
func DoseSchema(catalog Catalog, opts ...SchemaOption) *schema.Schema {
	cfg := newConfig(opts)
	return schema.New("dosis", []schema.Field{
		schema.Enum(FieldVaccineName, "La vacuna", Values(catalog.Vaccines)).Upper().
			WithMessages(schema.Messages{Option: "Seleccione una vacuna."}),
		schema.Integer(FieldDosesGiven, "Las dosis suministradas").
			AtLeast(1, "Este campo es obligatorio y mayor a 0.").
			WithMessages(schema.Messages{Required: "Este campo es obligatorio.", Type: "Este campo es obligatorio y mayor a 0."}),
		schema.Date(FieldDoseDate, "La fecha de la vacuna").
			WithMessages(schema.Messages{Required: "La fecha de la vacuna es requerida.", Type: "La fecha de la vacuna es requerida."}),
	}, nil, schema.WithClock(cfg.clock))
}

// VaccinationSchema builds the COVID vaccination history schema.
func VaccinationSchema(catalog Catalog, opts ...SchemaOption) *schema.Schema {
	cfg := newConfig(opts)
	vaccines := schema.Union{
		Discriminant: schema.Boolean(FieldHasVaccines, "¿Tiene vacunas contra el Covid-19?"),
		WhenTrue: []schema.Field{
			schema.List(FieldVaccines, "Las vacunas", DoseSchema(catalog, opts...)).
				Items(1, "Agregue al menos una vacuna."),
		},
	}
	return schema.New("vacunas", []schema.Field{
		documentNumber(FieldApplicantDocument, "El número de documento del postulante"),
	}, []schema.Union{vaccines}, schema.WithClock(cfg.clock))
}
