package enrich

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"spots-backend/lib/telemetry"
	"spots-backend/pipeline/schedule"
)

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("pipeline/enrich")
	defer cleanup()
	m.Run()
}

func strptr(s string) *string { return &s }

func TestExpandDayGroups(t *testing.T) {
	groups := map[string]string{
		"M-TH": "7:30AM-10:00PM",
		"F":    "7:30AM-6:00PM",
		"SAT":  "8AM-12AM",
		"SUN":  "LOCKED",
	}

	got, err := ExpandDayGroups(context.Background(), groups)
	require.NoError(t, err)

	want := map[string]schedule.DayHours{
		"monday":    {Open: strptr("07:30"), Close: strptr("22:00")},
		"tuesday":   {Open: strptr("07:30"), Close: strptr("22:00")},
		"wednesday": {Open: strptr("07:30"), Close: strptr("22:00")},
		"thursday":  {Open: strptr("07:30"), Close: strptr("22:00")},
		"friday":    {Open: strptr("07:30"), Close: strptr("18:00")},
		"saturday":  {Open: strptr("08:00"), Close: strptr("23:59")},
		"sunday":    {Open: nil, Close: nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hours mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandDayGroupsSkipsUnknownGroupsAndBadRanges(t *testing.T) {
	got, err := ExpandDayGroups(context.Background(), map[string]string{
		"M-F": "7:30AM-10:00PM",
		"SAT": "all day",
		"SUN": "9AM-5PM",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]schedule.DayHours{
		"sunday": {Open: strptr("09:00"), Close: strptr("17:00")},
	}, got)
}

func TestExpandDayGroupsRejectsBadClockTime(t *testing.T) {
	_, err := ExpandDayGroups(context.Background(), map[string]string{
		"F": "7:3OAM-6:00PM",
	})
	require.Error(t, err)
}

func buildingDoc(codes ...string) *schedule.BuildingDocument {
	doc := &schedule.BuildingDocument{
		Term:      "SP26",
		Buildings: map[string]*schedule.Building{},
	}
	for _, code := range codes {
		doc.Buildings[code] = &schedule.Building{
			Rooms: map[string][]schedule.ClassMeeting{"101": {{Course: "ACG 2021"}}},
		}
	}
	return doc
}

func TestApplyHours(t *testing.T) {
	doc := buildingDoc("BA1", "HEC")
	table := HoursTable{
		"BA1": {"M-TH": "7:30AM-10:00PM", "F": "7:30AM-6:00PM", "SAT": "LOCKED", "SUN": "LOCKED"},
	}

	report, err := ApplyHours(context.Background(), doc, table)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, []string{"HEC"}, report.Missing)

	require.Len(t, doc.Buildings["BA1"].Hours, 7)
	require.Equal(t, schedule.DayHours{Open: strptr("07:30"), Close: strptr("22:00")},
		doc.Buildings["BA1"].Hours["monday"])
	require.Equal(t, schedule.DayHours{}, doc.Buildings["BA1"].Hours["sunday"])
	require.Nil(t, doc.Buildings["HEC"].Hours)
}

func TestApplyHoursFailsOnBadTable(t *testing.T) {
	doc := buildingDoc("BA1")
	_, err := ApplyHours(context.Background(), doc, HoursTable{
		"BA1": {"F": "garbage-more garbage"},
	})
	require.Error(t, err)
}

const campusMap = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "BA1"},
      "geometry": {"type": "Point", "coordinates": [-81.2001, 28.6004]}
    },
    {
      "type": "Feature",
      "properties": {"name": "HEC"},
      "geometry": {"type": "Point", "coordinates": [-81.1982, 28.6016]}
    },
    {
      "type": "Feature",
      "properties": {"name": ""},
      "geometry": {"type": "Point", "coordinates": [-81.19, 28.60]}
    },
    {
      "type": "Feature",
      "properties": {"name": "BROKEN"},
      "geometry": {"type": "Point", "coordinates": []}
    }
  ]
}`

func TestCoordinatesFromGeoJSON(t *testing.T) {
	coords, err := CoordinatesFromGeoJSON([]byte(campusMap))
	require.NoError(t, err)

	want := map[string]schedule.Coordinates{
		"BA1": {Latitude: 28.6004, Longitude: -81.2001},
		"HEC": {Latitude: 28.6016, Longitude: -81.1982},
	}
	if diff := cmp.Diff(want, coords); diff != "" {
		t.Fatalf("coordinates mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyCoordinates(t *testing.T) {
	doc := buildingDoc("BA1", "HEC1")
	coords, err := CoordinatesFromGeoJSON([]byte(campusMap))
	require.NoError(t, err)

	report := ApplyCoordinates(context.Background(), doc, coords)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, []string{"HEC1"}, report.Missing)

	require.Equal(t, &schedule.Coordinates{Latitude: 28.6004, Longitude: -81.2001},
		doc.Buildings["BA1"].Coordinates)
	require.Nil(t, doc.Buildings["HEC1"].Coordinates)
}

func TestNearestKey(t *testing.T) {
	coords := map[string]schedule.Coordinates{
		"HEC": {}, "MSB": {}, "ENG1": {},
	}
	require.Equal(t, "HEC", nearestKey("HEC1", coords))
	require.Equal(t, "", nearestKey("ZZZZZ", coords))
}
