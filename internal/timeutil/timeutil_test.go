package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestToUTC_ZeroOffset(t *testing.T) {
	t.Parallel()

	got, err := ToUTC("2025-11-02T22:30", 0)
	if err != nil {
		t.Fatalf("ToUTC() error: %v", err)
	}

	want := time.Date(2025, 11, 2, 22, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}

func TestToUTC_OffsetConvention(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		local  string
		offset int
		want   time.Time
	}{
		{
			// Local ahead of UTC: subtracting the offset moves back.
			name:   "IST +330",
			local:  "2025-11-02T22:30",
			offset: 330,
			want:   time.Date(2025, 11, 2, 17, 0, 0, 0, time.UTC),
		},
		{
			name:   "US Eastern -300",
			local:  "2025-11-02T22:30",
			offset: -300,
			want:   time.Date(2025, 11, 3, 3, 30, 0, 0, time.UTC),
		},
		{
			name:   "half-hour zone +570",
			local:  "2025-01-01T09:30",
			offset: 570,
			want:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToUTC(tc.local, tc.offset)
			if err != nil {
				t.Fatalf("ToUTC() error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestToUTC_AcceptsSeconds(t *testing.T) {
	t.Parallel()

	got, err := ToUTC("2025-01-01T00:00:30", 0)
	if err != nil {
		t.Fatalf("ToUTC() error: %v", err)
	}
	want := time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestToUTC_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "not-a-date", "2025-13-40T99:99", "2025-11-02 22:30"} {
		_, err := ToUTC(bad, 0)
		if err == nil {
			t.Fatalf("expected error for input %q, got nil", bad)
		}
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat for %q, got: %v", bad, err)
		}
	}
}
