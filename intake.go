package intake

import (
	"fmt"

	"github.com/goliatone/go-intake/pkg/form"
	forms "github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/submission"
)

// Definition aliases the form definition for callers that only import the
// root package.
type Definition = forms.Definition

// Catalog aliases the option catalog.
type Catalog = forms.Catalog

// Open looks up the form registered under id and builds a controller seeded
// with its defaults and validation trigger. When doc is not empty and the form
// links to an applicant, the link field is locked to doc.
func Open(id, doc string, catalog Catalog, opts ...form.Option) (Definition, *form.Form, error) {
	def, err := forms.Lookup(id, catalog)
	if err != nil {
		return Definition{}, nil, err
	}
	mode, _ := form.ParseMode(string(def.Trigger))
	f := form.New(def.Schema, def.Defaults(), append([]form.Option{form.WithMode(mode)}, opts...)...)
	if doc != "" && def.LinkField != "" {
		if _, err := f.BindOnce(doc, def.LinkField, doc); err != nil {
			return Definition{}, nil, fmt.Errorf("intake: link %s: %w", def.ID, err)
		}
	}
	return def, f, nil
}

// NavigatorFor returns the navigator that runs after a successful submission
// of def, or nil when the form has no follow-up.
func NavigatorFor(def Definition) submission.Navigator {
	switch def.ID {
	case forms.FormApplicant:
		return submission.ApplicantNavigator{}
	case forms.FormSpouse:
		return submission.SpouseNavigator{}
	default:
		return nil
	}
}

// NewSubmitter builds a handler posting def to its path under apiBase, with
// the form's navigator installed ahead of opts.
func NewSubmitter(def Definition, apiBase string, opts ...submission.Option) (*submission.Handler, error) {
	if def.Path == "" {
		return nil, fmt.Errorf("intake: form %s has no endpoint", def.ID)
	}
	endpoint, err := submission.Endpoint(apiBase, def.Path)
	if err != nil {
		return nil, err
	}
	all := make([]submission.Option, 0, len(opts)+1)
	if nav := NavigatorFor(def); nav != nil {
		all = append(all, submission.WithNavigator(nav))
	}
	return submission.New(endpoint, append(all, opts...)...), nil
}
