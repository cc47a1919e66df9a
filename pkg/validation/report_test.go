package validation

import (
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
)

func vaccination() *schema.Schema {
	clock := intake.WithClock(func() time.Time { return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC) })
	return intake.VaccinationSchema(intake.MustDefaultCatalog(), clock)
}

func TestCheckValidRecord(t *testing.T) {
	report := Check(vaccination(), schema.Record{
		intake.FieldApplicantDocument: "1143994968",
		intake.FieldHasVaccines:       true,
		intake.FieldVaccines: []any{
			map[string]any{
				intake.FieldVaccineName: "MODERNA",
				intake.FieldDosesGiven:  "1",
				intake.FieldDoseDate:    "2021-09-10",
			},
		},
	})
	if !report.Valid {
		t.Fatalf("expected valid report, got %+v", report.Issues)
	}
	if report.Data[intake.FieldApplicantDocument] != "1143994968" {
		t.Fatalf("normalised data missing: %v", report.Data)
	}
}

func TestCheckSchemaIssues(t *testing.T) {
	report := Check(vaccination(), schema.Record{
		intake.FieldApplicantDocument: "12",
		intake.FieldHasVaccines:       true,
	})
	if report.Valid {
		t.Fatalf("expected invalid report")
	}

	var got []string
	for _, issue := range report.Issues {
		if issue.Source != SourceSchema {
			t.Errorf("unexpected source %q", issue.Source)
		}
		got = append(got, issue.Path+"|"+issue.Field)
	}
	want := []string{
		"numero_documento_postulante|Número de documento del postulante",
		"vacunas|Vacunas",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestContractIssuesCarryPaths(t *testing.T) {
	body := openapi3.NewObjectSchema().
		WithProperty("vacunas", openapi3.NewArraySchema().WithItems(
			openapi3.NewObjectSchema().WithProperty("dosis", openapi3.NewIntegerSchema().WithMin(1)),
		))

	issues, err := contractIssues(body, schema.Record{
		"vacunas": []any{map[string]any{"dosis": 0}},
	})
	if err != nil {
		t.Fatalf("contractIssues: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %+v", issues)
	}
	if issues[0].Path != "vacunas.0.dosis" || issues[0].Source != SourceContract {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
}

func TestFieldPath(t *testing.T) {
	cases := map[string][]string{
		"":                 nil,
		"correo":           {"correo"},
		"vacunas.1.nombre": {"vacunas", "1", "nombre"},
		"a/b":              {"a~1b"},
	}
	for want, pointer := range cases {
		if got := fieldPath(pointer); got != want {
			t.Errorf("fieldPath(%v) = %q, want %q", pointer, got, want)
		}
	}
}
