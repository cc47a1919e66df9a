package intake

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Option is one selectable value.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Catalog holds the externally supplied option lists the enum fields draw
// from.
type Catalog struct {
	DocumentTypes   []Option `yaml:"tipo_documento"`
	Sexes           []Option `yaml:"sexo"`
	BloodTypes      []Option `yaml:"tipo_sangre"`
	MaritalStatuses []Option `yaml:"estado_civil"`
	Vaccines        []Option `yaml:"vacunas_covid"`
}

// DefaultCatalog parses the embedded option lists.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// MustDefaultCatalog is DefaultCatalog for package-level wiring and tests.
func MustDefaultCatalog() Catalog {
	catalog, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadCatalog reads a YAML catalog from disk. Lists omitted from the file keep
// the embedded defaults.
func LoadCatalog(path string) (Catalog, error) {
	base, err := DefaultCatalog()
	if err != nil {
		return Catalog{}, err
	}
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("intake: read catalog %s: %w", path, err)
	}
	override, err := ParseCatalog(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("intake: catalog %s: %w", path, err)
	}
	return base.merge(override), nil
}

// ParseCatalog decodes a YAML catalog and normalises its entries.
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("intake: parse catalog: %w", err)
	}
	for name, list := range catalog.lists() {
		cleaned, err := cleanOptions(*list)
		if err != nil {
			return Catalog{}, fmt.Errorf("intake: catalog list %s: %w", name, err)
		}
		*list = cleaned
	}
	return catalog, nil
}

func (c *Catalog) lists() map[string]*[]Option {
	return map[string]*[]Option{
		"tipo_documento": &c.DocumentTypes,
		"sexo":           &c.Sexes,
		"tipo_sangre":    &c.BloodTypes,
		"estado_civil":   &c.MaritalStatuses,
		"vacunas_covid":  &c.Vaccines,
	}
}

func (c Catalog) merge(override Catalog) Catalog {
	out := c
	if len(override.DocumentTypes) > 0 {
		out.DocumentTypes = override.DocumentTypes
	}
	if len(override.Sexes) > 0 {
		out.Sexes = override.Sexes
	}
	if len(override.BloodTypes) > 0 {
		out.BloodTypes = override.BloodTypes
	}
	if len(override.MaritalStatuses) > 0 {
		out.MaritalStatuses = override.MaritalStatuses
	}
	if len(override.Vaccines) > 0 {
		out.Vaccines = override.Vaccines
	}
	return out
}

func cleanOptions(options []Option) ([]Option, error) {
	if len(options) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(options))
	out := make([]Option, 0, len(options))
	for _, option := range options {
		value := strings.TrimSpace(option.Value)
		if value == "" {
			return nil, errors.New("option value is required")
		}
		if _, exists := seen[value]; exists {
			return nil, fmt.Errorf("duplicate option %q", value)
		}
		seen[value] = struct{}{}
		label := strings.TrimSpace(option.Label)
		if label == "" {
			label = value
		}
		out = append(out, Option{Value: value, Label: label})
	}
	return out, nil
}

// Values extracts the stored values of options in order.
func Values(options []Option) []string {
	out := make([]string, len(options))
	for i, option := range options {
		out[i] = option.Value
	}
	return out
}

// LabelFor returns the label of value, or value itself when unknown.
func LabelFor(options []Option, value string) string {
	for _, option := range options {
		if option.Value == value {
			return option.Label
		}
	}
	return value
}

// OptionsFor returns the option list backing an enum field, keyed by the
// API field name.
func (c Catalog) OptionsFor(field string) []Option {
	switch field {
	case FieldDocumentType:
		return c.DocumentTypes
	case FieldSex:
		return c.Sexes
	case FieldBloodType:
		return c.BloodTypes
	case FieldMaritalStatus:
		return c.MaritalStatuses
	case FieldVaccineName:
		return c.Vaccines
	default:
		return nil
	}
}
