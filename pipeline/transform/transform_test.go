package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"spots-backend/pipeline/schedule"
)

func slot(start, end string) *schedule.TimeSlot {
	return &schedule.TimeSlot{Start: start, End: end}
}

func loc(building, room string) *schedule.Location {
	return &schedule.Location{Building: building, Room: room}
}

func TestToBuildingsSingleSection(t *testing.T) {
	doc := schedule.SubjectDocument{
		Term: "SP26",
		Subjects: []schedule.Subject{{
			Code: "ACG",
			Courses: []schedule.Course{{
				Number: "ACG 2021",
				Title:  "Principles of Financial Accounting",
				Sections: []schedule.Section{{
					Time:      slot("07:30", "08:50"),
					Location:  loc("BA1", "O107"),
					Days:      []string{"T", "R"},
					StartDate: "2026-01-12",
					EndDate:   "2026-05-01",
				}},
			}},
		}},
	}

	out := ToBuildings(doc)

	require.Equal(t, "SP26", out.Term)
	require.Len(t, out.Buildings, 1)
	building := out.Buildings["BA1"]
	require.NotNil(t, building)
	require.Equal(t, 1, building.TotalSections)

	want := map[string][]schedule.ClassMeeting{
		"O107": {{
			Course:    "ACG 2021",
			Title:     "Principles of Financial Accounting",
			Time:      slot("07:30", "08:50"),
			Days:      []string{"T", "R"},
			StartDate: "2026-01-12",
			EndDate:   "2026-05-01",
		}},
	}
	if diff := cmp.Diff(want, building.Rooms); diff != "" {
		t.Fatalf("rooms mismatch (-want +got):\n%s", diff)
	}
}

func TestToBuildingsTotalSectionsMatchesRoomContents(t *testing.T) {
	doc := schedule.SubjectDocument{
		Term: "FA26",
		Subjects: []schedule.Subject{
			{
				Code: "COP",
				Courses: []schedule.Course{{
					Number: "COP 3502",
					Title:  "Computer Science I",
					Sections: []schedule.Section{
						{Time: slot("09:00", "10:15"), Location: loc("HEC", "101"), Days: []string{"M", "W"}},
						{Time: slot("10:30", "11:45"), Location: loc("HEC", "101"), Days: []string{"M", "W"}},
						{Time: slot("13:30", "14:45"), Location: loc("HEC", "125"), Days: []string{"T", "R"}},
					},
				}},
			},
			{
				Code: "MAC",
				Courses: []schedule.Course{{
					Number: "MAC 2311",
					Title:  "Calculus I",
					Sections: []schedule.Section{
						{Time: slot("08:30", "09:20"), Location: loc("MSB", "360"), Days: []string{"M", "W", "F"}},
						// TBA pattern, already unlocatable.
						{Time: nil, Location: nil, Days: nil},
					},
				}},
			},
		},
	}

	out := ToBuildings(doc)

	for code, building := range out.Buildings {
		sum := 0
		for _, meetings := range building.Rooms {
			sum += len(meetings)
		}
		require.Equal(t, sum, building.TotalSections, "building %s", code)
	}
	require.Equal(t, 3, out.Buildings["HEC"].TotalSections)
	require.Equal(t, 1, out.Buildings["MSB"].TotalSections)
	require.Len(t, out.Buildings["HEC"].Rooms["101"], 2)
}

func TestToBuildingsSkipsUnlocatedSections(t *testing.T) {
	doc := schedule.SubjectDocument{
		Term: "SP26",
		Subjects: []schedule.Subject{{
			Code: "WEB",
			Courses: []schedule.Course{{
				Number: "WEB 1000",
				Title:  "Fully Online",
				Sections: []schedule.Section{
					{Time: slot("09:00", "10:15"), Location: nil},
				},
			}},
		}},
	}

	out := ToBuildings(doc)
	require.Empty(t, out.Buildings)
}

func meetings(n int) []schedule.ClassMeeting {
	out := make([]schedule.ClassMeeting, n)
	for i := range out {
		out[i] = schedule.ClassMeeting{Course: "XXX 1000", Title: "Filler"}
	}
	return out
}

func buildingWithRooms(rooms ...string) *schedule.Building {
	b := &schedule.Building{Rooms: map[string][]schedule.ClassMeeting{}}
	for _, r := range rooms {
		b.Rooms[r] = meetings(1)
		b.TotalSections++
	}
	return b
}

func TestFilterDropsSmallAndExcludedBuildings(t *testing.T) {
	doc := schedule.BuildingDocument{
		Term: "SP26",
		Buildings: map[string]*schedule.Building{
			"BA1":  buildingWithRooms("O107", "O108", "O109", "O110"),
			"HEC":  buildingWithRooms("101", "125", "202", "302", "450"),
			"TINY": buildingWithRooms("1", "2", "3"),
			"DPAC": buildingWithRooms("S100", "S101", "S102", "S103", "S104"),
			"RSH":  buildingWithRooms("A", "B", "C", "D"),
			"CROL": buildingWithRooms("201", "202", "203", "204"),
		},
	}

	out := Filter(doc, DefaultFilterConfig())

	require.Len(t, out.Buildings, 2)
	require.Contains(t, out.Buildings, "BA1")
	require.Contains(t, out.Buildings, "HEC")
	for _, code := range []string{"TINY", "DPAC", "RSH", "CROL"} {
		require.NotContains(t, out.Buildings, code)
	}
}

func TestFilterNeverGrowsRoomsAndRecomputesTotals(t *testing.T) {
	b := buildingWithRooms("101", "102", "103", "104")
	// Stale count from an earlier stage must not survive the filter.
	b.TotalSections = 99

	doc := schedule.BuildingDocument{
		Term:      "SP26",
		Buildings: map[string]*schedule.Building{"HEC": b},
	}

	out := Filter(doc, DefaultFilterConfig())

	kept := out.Buildings["HEC"]
	require.NotNil(t, kept)
	require.LessOrEqual(t, len(kept.Rooms), len(b.Rooms))
	require.Equal(t, 4, kept.TotalSections)
	if diff := cmp.Diff(b.Rooms, kept.Rooms); diff != "" {
		t.Fatalf("rooms changed (-want +got):\n%s", diff)
	}
}

func TestFilterPreservesEnrichmentFields(t *testing.T) {
	b := buildingWithRooms("101", "102", "103", "104")
	opens, closes := "07:00", "23:00"
	b.Coordinates = &schedule.Coordinates{Latitude: 28.60, Longitude: -81.20}
	b.Hours = map[string]schedule.DayHours{"monday": {Open: &opens, Close: &closes}}

	doc := schedule.BuildingDocument{
		Term:      "SP26",
		Buildings: map[string]*schedule.Building{"ENG1": b},
	}

	out := Filter(doc, DefaultFilterConfig())
	kept := out.Buildings["ENG1"]
	require.NotNil(t, kept)
	require.Equal(t, b.Coordinates, kept.Coordinates)
	require.Equal(t, b.Hours, kept.Hours)
}

func TestSummarize(t *testing.T) {
	doc := schedule.BuildingDocument{
		Buildings: map[string]*schedule.Building{
			"BA1": buildingWithRooms("O107", "O108"),
			"HEC": buildingWithRooms("101", "125", "202"),
		},
	}

	stats := Summarize(doc)
	require.Equal(t, 2, stats.Buildings)
	require.Equal(t, 5, stats.Rooms)
	require.Equal(t, 5, stats.TotalSections)
	require.Equal(t, []BuildingRooms{
		{Code: "HEC", Rooms: 3},
		{Code: "BA1", Rooms: 2},
	}, stats.TopBuildings)
}
