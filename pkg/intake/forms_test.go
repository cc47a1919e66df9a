package intake_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-intake/pkg/intake"
)

func TestLookup(t *testing.T) {
	catalog := intake.MustDefaultCatalog()
	cases := []struct {
		id      string
		path    string
		trigger intake.Trigger
		link    string
	}{
		{"postulante", intake.ApplicantPath, intake.TriggerBlur, ""},
		{" CONYUGE ", intake.SpousePath, intake.TriggerChange, intake.FieldApplicantDocument},
		{"vacunas", "", intake.TriggerChange, intake.FieldApplicantDocument},
	}
	for _, tc := range cases {
		def, err := intake.Lookup(tc.id, catalog)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.id, err)
		}
		if def.Path != tc.path || def.Trigger != tc.trigger || def.LinkField != tc.link {
			t.Errorf("Lookup(%q) = path %q trigger %q link %q", tc.id, def.Path, def.Trigger, def.LinkField)
		}
		if def.Schema == nil || def.Defaults == nil {
			t.Errorf("Lookup(%q) returned an incomplete definition", tc.id)
		}
	}

	if _, err := intake.Lookup("empleo", catalog); err == nil {
		t.Fatalf("expected error for unknown form")
	}
}

func TestDefaults(t *testing.T) {
	applicant := intake.ApplicantDefaults()
	if applicant[intake.FieldDependents] != "1" || applicant[intake.FieldHasChildren] != false {
		t.Fatalf("unexpected applicant defaults: %v", applicant)
	}
	if _, ok := applicant[intake.FieldBirthDate]; ok {
		t.Fatalf("birth date must start unset")
	}

	applicant[intake.FieldFirstName] = "changed"
	if intake.ApplicantDefaults()[intake.FieldFirstName] != "" {
		t.Fatalf("defaults must be fresh on every call")
	}

	if intake.SpouseDefaults()[intake.FieldHasJob] != false {
		t.Fatalf("tiene_trabajo should default to false")
	}
	if intake.VaccinationDefaults()[intake.FieldHasVaccines] != false {
		t.Fatalf("tiene_vacunas should default to false")
	}
}

func TestDemoSpouseDefaultsValidate(t *testing.T) {
	record := intake.DemoSpouseDefaults()
	record[intake.FieldApplicantDocument] = "1143994968"

	s := intake.SpouseSchema(intake.MustDefaultCatalog(), intake.WithClock(func() time.Time {
		return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	}))
	result := s.Validate(record)
	if !result.Success {
		t.Fatalf("demo record should validate: %v", result.Errors)
	}
	if result.Data[intake.FieldFirstName] != "STEVEN" {
		t.Fatalf("demo names should be upper-cased, got %v", result.Data[intake.FieldFirstName])
	}
}
