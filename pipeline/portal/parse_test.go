package portal

import (
	"os"
	"testing"

	"spots-backend/pipeline/schedule"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	html, err := os.ReadFile("testdata/results_acg.html")
	require.NoError(t, err)

	courses, err := ParseResults(string(html))
	require.NoError(t, err)

	// ACG 2071 only meets online and must be dropped entirely
	require.Len(t, courses, 2)

	acg2021 := courses[0]
	require.Equal(t, "ACG 2021", acg2021.Number)
	require.Equal(t, "Principles of Financial Accounting", acg2021.Title)

	expected := []schedule.Section{
		{
			Time:      &schedule.TimeSlot{Start: "07:30", End: "08:50"},
			Location:  &schedule.Location{Building: "BA1", Room: "O107"},
			Days:      []string{"M", "W"},
			StartDate: "2026-01-12",
			EndDate:   "2026-05-05",
		},
		{
			Time:      &schedule.TimeSlot{Start: "09:00", End: "10:15"},
			Location:  &schedule.Location{Building: "CB1", Room: "0104"},
			Days:      []string{"T", "R"},
			StartDate: "2026-01-12",
			EndDate:   "2026-05-05",
		},
		{
			Time:      &schedule.TimeSlot{Start: "09:00", End: "09:50"},
			Location:  &schedule.Location{Building: "CB1", Room: "0120"},
			Days:      []string{"F"},
			StartDate: "2026-01-12",
			EndDate:   "2026-02-27",
		},
	}
	diff := cmp.Diff(expected, acg2021.Sections)
	if diff != "" {
		t.Fatal(diff)
	}

	// headers of still-collapsed groups use the "Expand section" verb
	acg3173 := courses[1]
	require.Equal(t, "ACG 3173", acg3173.Number)
	require.Equal(t, "Accounting Information Systems", acg3173.Title)

	// the ARR line of the second row pads out against the
	// single-line room cell and must not survive
	require.Len(t, acg3173.Sections, 2)
	for _, s := range acg3173.Sections {
		require.NotNil(t, s.Time)
		require.NotNil(t, s.Location)
		require.Equal(t, "BA2", s.Location.Building)
	}
}

func TestParseResultsEmptyPage(t *testing.T) {
	courses, err := ParseResults("<html><body>No classes found</body></html>")
	require.NoError(t, err)
	require.Empty(t, courses)
}
