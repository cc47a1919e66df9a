package schema_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-intake/pkg/schema"
)

func TestYearsBefore(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "ordinary day",
			now:  time.Date(2025, time.October, 17, 23, 59, 0, 0, time.UTC),
			want: time.Date(2007, time.October, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "leap day clamps to feb 28",
			now:  time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC),
			want: time.Date(2006, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "later leap day also clamps",
			now:  time.Date(2040, time.February, 29, 8, 0, 0, 0, time.UTC),
			want: time.Date(2022, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "march first is not shifted",
			now:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2006, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := schema.YearsBefore(tc.now, 18); !got.Equal(tc.want) {
				t.Fatalf("YearsBefore(%s) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}

	// 2028 - 4 = 2024 is a leap year, so Feb 29 survives.
	got := schema.YearsBefore(time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), 4)
	if want := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestAdultCutoff_LeapDayBoundary(t *testing.T) {
	leapDay := func() time.Time { return time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC) }
	s := schema.New("edad", []schema.Field{
		schema.Date("fecha_nacimiento", "La fecha de nacimiento").NotAfter(schema.AdultCutoff(18), "Debes ser mayor de 18 años."),
	}, nil, schema.WithClock(leapDay))

	if result := s.Validate(schema.Record{"fecha_nacimiento": "2006-02-28"}); !result.Success {
		t.Fatalf("2006-02-28 should be accepted on 2024-02-29: %v", result.Errors)
	}
	if result := s.Validate(schema.Record{"fecha_nacimiento": "2006-03-01"}); result.Success {
		t.Fatalf("2006-03-01 should be rejected on 2024-02-29")
	}
}
