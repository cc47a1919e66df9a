package submission

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Route prefixes of the follow-up forms. Both carry the applicant document
// number as their last segment.
const (
	SpouseRoute      = "/postulante-conyuge/"
	VaccinationRoute = "/vacunas-covid/"
)

// Navigator picks the route to open after a successful submission.
type Navigator interface {
	Next(record schema.Record) (string, bool)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(record schema.Record) (string, bool)

// Next calls fn.
func (fn NavigatorFunc) Next(record schema.Record) (string, bool) { return fn(record) }

// ApplicantNavigator sends married or free-union applicants to the spouse
// form and everybody else to the vaccination form.
type ApplicantNavigator struct{}

// Next implements Navigator.
func (ApplicantNavigator) Next(record schema.Record) (string, bool) {
	doc, _ := record[intake.FieldDocumentNumber].(string)
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return "", false
	}
	status, _ := record[intake.FieldMaritalStatus].(string)
	if intake.RequiresSpouse(status) {
		return SpouseRoute + url.PathEscape(doc), true
	}
	return VaccinationRoute + url.PathEscape(doc), true
}

// SpouseNavigator continues from the spouse form to the vaccination form of
// the linked applicant.
type SpouseNavigator struct{}

// Next implements Navigator.
func (SpouseNavigator) Next(record schema.Record) (string, bool) {
	doc, _ := record[intake.FieldApplicantDocument].(string)
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return "", false
	}
	return VaccinationRoute + url.PathEscape(doc), true
}

// Route is a parsed follow-up route.
type Route struct {
	Form     string
	Document string
}

// ParseRoute splits a route produced by a Navigator into the form id and the
// applicant document number.
func ParseRoute(path string) (Route, error) {
	for prefix, form := range map[string]string{
		SpouseRoute:      intake.FormSpouse,
		VaccinationRoute: intake.FormVaccination,
	} {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		doc, err := url.PathUnescape(rest)
		if err != nil {
			return Route{}, fmt.Errorf("submission: route %q: %w", path, err)
		}
		if doc == "" || strings.Contains(doc, "/") {
			return Route{}, fmt.Errorf("submission: route %q has no document number", path)
		}
		return Route{Form: form, Document: doc}, nil
	}
	return Route{}, fmt.Errorf("submission: unknown route %q", path)
}
