package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/render"
)

func TestMapErrorPayloadResolvesSchemaPaths(t *testing.T) {
	s := intake.VaccinationSchema(intake.MustDefaultCatalog())

	payload := map[string][]string{
		"/body/numero_documento_postulante": {"Documento no encontrado"},
		"vacunas[1].fechas_dosis":           {"Fecha inválida"},
		"$.data.vacunas.0.nombre_vacuna":    {" Vacuna desconocida ", "Vacuna desconocida"},
		"vacunas.nombre_vacuna":             {"Revise las vacunas"},
		"non_field_errors":                  {"El postulante no existe"},
		"request/body/apodo":                {"Campo no soportado"},
		"":                                  {"  "},
	}

	mapped := render.MapErrorPayload(s, payload)

	wantFields := map[string][]string{
		"numero_documento_postulante": {"Documento no encontrado"},
		"vacunas.1.fechas_dosis":      {"Fecha inválida"},
		"vacunas.0.nombre_vacuna":     {"Vacuna desconocida"},
		"vacunas":                     {"Revise las vacunas"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Campo no soportado", "El postulante no existe"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	first := mapped.First()
	if first["vacunas.0.nombre_vacuna"] != "Vacuna desconocida" {
		t.Fatalf("unexpected first message map %v", first)
	}
}

func TestFlattenPayloadShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want map[string][]string
	}{
		{
			name: "map of strings and lists",
			raw:  map[string]any{"correo": "ya existe", "celular": []any{"corto", 3}},
			want: map[string][]string{"correo": {"ya existe"}, "celular": {"corto"}},
		},
		{
			name: "list of objects",
			raw: []any{
				map[string]any{"field": "correo", "message": "ya existe"},
				map[string]any{"campo": "celular", "mensaje": "inválido"},
				"general",
			},
			want: map[string][]string{"correo": {"ya existe"}, "celular": {"inválido"}, "": {"general"}},
		},
		{
			name: "plain string",
			raw:  "falló",
			want: map[string][]string{"": {"falló"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, render.FlattenPayload(tc.raw)); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" Primero ", "Segundo"}, "Segundo", "tercero", "  ")
	want := []string{"Primero", "Segundo", "tercero"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
