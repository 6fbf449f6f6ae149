package load

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"spots-backend/lib/telemetry"
	"spots-backend/pipeline/schedule"
)

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("pipeline/load")
	defer cleanup()
	m.Run()
}

func strptr(s string) *string { return &s }

func allDayHours() map[string]schedule.DayHours {
	hours := map[string]schedule.DayHours{}
	for _, day := range schedule.WeekdayNames {
		hours[day] = schedule.DayHours{Open: strptr("07:00"), Close: strptr("22:00")}
	}
	hours["sunday"] = schedule.DayHours{}
	return hours
}

func enrichedDoc() schedule.BuildingDocument {
	meeting := func(course, title string, days ...string) schedule.ClassMeeting {
		return schedule.ClassMeeting{
			Course:    course,
			Title:     title,
			Time:      &schedule.TimeSlot{Start: "10:30", End: "11:50"},
			Days:      days,
			StartDate: "2026-01-12",
			EndDate:   "2026-05-01",
		}
	}
	return schedule.BuildingDocument{
		Term: "SP26",
		Buildings: map[string]*schedule.Building{
			"BA1": {
				Rooms: map[string][]schedule.ClassMeeting{
					"O107": {meeting("ACG 2021", "Financial Accounting", "T", "R")},
					"O110": {
						meeting("ACG 3173", "Accounting for Decision-Makers", "M", "W", "F"),
						meeting("ECO 2013", "Macroeconomics", "T"),
					},
				},
				TotalSections: 3,
				Coordinates:   &schedule.Coordinates{Latitude: 28.6004, Longitude: -81.2001},
				Hours:         allDayHours(),
			},
			"HEC": {
				Rooms: map[string][]schedule.ClassMeeting{
					"101": {meeting("COP 3502", "Computer Science I", "M", "W")},
				},
				TotalSections: 1,
				Coordinates:   &schedule.Coordinates{Latitude: 28.6016, Longitude: -81.1982},
				Hours:         allDayHours(),
			},
		},
	}
}

func calendar() []schedule.AcademicTerm {
	return []schedule.AcademicTerm{
		{AcademicYear: "2025-2026", Term: "Spring 2026", StartDate: "2026-01-12", EndDate: "2026-05-01"},
		{AcademicYear: "2025-2026", Term: "Spring 2026", StartDate: "2026-01-12", EndDate: "2026-03-01", PartOfTerm: strptr("A")},
	}
}

func TestFlattenExpandsDaysIntoRows(t *testing.T) {
	doc := enrichedDoc()

	data, err := Flatten(doc)
	require.NoError(t, err)

	require.Len(t, data.Buildings, 2)
	require.Len(t, data.Rooms, 3)
	// 2 + 3 + 1 + 2 meeting-days.
	require.Len(t, data.Schedules, 8)
	require.NoError(t, VerifyCounts(data, CountExpected(doc)))

	// Deterministic order: buildings and rooms sorted.
	require.Equal(t, "BA1", data.Buildings[0].Name)
	require.Equal(t, "HEC", data.Buildings[1].Name)
	require.Equal(t, RoomRow{"BA1", "O107"}, data.Rooms[0])

	first := data.Schedules[0]
	require.Equal(t, ClassScheduleRow{
		BuildingName: "BA1",
		RoomNumber:   "O107",
		CourseCode:   "ACG 2021",
		CourseTitle:  "Financial Accounting",
		StartTime:    "10:30",
		EndTime:      "11:50",
		DayOfWeek:    "T",
		StartDate:    "2026-01-12",
		EndDate:      "2026-05-01",
	}, first)
}

func TestValidateBuildingsCollectsAllErrors(t *testing.T) {
	doc := enrichedDoc()
	doc.Buildings["BA1"].Coordinates = nil
	delete(doc.Buildings["HEC"].Hours, "sunday")
	doc.Buildings["HEC"].Rooms["101"][0].Title = ""

	err := ValidateBuildings(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "building BA1: missing coordinates")
	require.Contains(t, err.Error(), "building HEC: missing hours for sunday")
	require.Contains(t, err.Error(), "missing title")
}

func TestValidateBuildingsAcceptsCompleteDocument(t *testing.T) {
	require.NoError(t, ValidateBuildings(enrichedDoc()))
}

func TestValidateTerms(t *testing.T) {
	require.NoError(t, ValidateTerms(calendar()))

	bad := calendar()
	bad[0].PartOfTerm = strptr("C")
	require.ErrorContains(t, ValidateTerms(bad), `invalid part_of_term "C"`)

	bad = calendar()
	bad[1].EndDate = bad[1].StartDate
	require.ErrorContains(t, ValidateTerms(bad), "not after start date")

	bad = calendar()
	bad[0].AcademicYear = ""
	require.ErrorContains(t, ValidateTerms(bad), "missing required fields")
}

func testStore(t *testing.T) *SQLStore {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return NewSQLiteStore(db)
}

func TestRunLoadsDatabase(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	result, err := Run(ctx, store, enrichedDoc(), calendar(), Config{})
	require.NoError(t, err)
	require.Equal(t, Result{Buildings: 2, Rooms: 3, Schedules: 8, Terms: 2}, result)

	count, err := store.Count(ctx, TableClassSchedule)
	require.NoError(t, err)
	require.Equal(t, 8, count)

	// A second run replaces schedules and terms instead of stacking
	// them, and upserts leave buildings and rooms stable.
	result, err = Run(ctx, store, enrichedDoc(), calendar(), Config{BatchSize: 2})
	require.NoError(t, err)
	require.Equal(t, Result{Buildings: 2, Rooms: 3, Schedules: 8, Terms: 2}, result)

	for table, want := range map[string]int{
		TableBuildings:     2,
		TableRooms:         3,
		TableClassSchedule: 8,
		TableAcademicTerms: 2,
	} {
		count, err := store.Count(ctx, table)
		require.NoError(t, err)
		require.Equal(t, want, count, "table %s", table)
	}
}

func TestRunSkipsTermsWhenCalendarMissing(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	_, err := Run(ctx, store, enrichedDoc(), calendar(), Config{})
	require.NoError(t, err)

	// Loading without a calendar must leave the existing terms alone.
	result, err := Run(ctx, store, enrichedDoc(), nil, Config{})
	require.NoError(t, err)
	require.Equal(t, 0, result.Terms)

	count, err := store.Count(ctx, TableAcademicTerms)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

// failStore fails the test if anything reaches the database.
type failStore struct{ t *testing.T }

func (s failStore) Insert(context.Context, string, []string, [][]any) error {
	s.t.Fatal("insert reached the store")
	return nil
}

func (s failStore) Upsert(context.Context, string, []string, []string, [][]any) error {
	s.t.Fatal("upsert reached the store")
	return nil
}

func (s failStore) DeleteAll(context.Context, string) error {
	s.t.Fatal("delete reached the store")
	return nil
}

func (s failStore) Count(context.Context, string) (int, error) {
	s.t.Fatal("count reached the store")
	return 0, nil
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	result, err := Run(context.Background(), failStore{t}, enrichedDoc(), calendar(), Config{DryRun: true})
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, 8, result.Schedules)
}

func TestRunRejectsInvalidDocumentBeforeWriting(t *testing.T) {
	doc := enrichedDoc()
	doc.Buildings["BA1"].Coordinates = nil

	_, err := Run(context.Background(), failStore{t}, doc, nil, Config{})
	require.ErrorContains(t, err, "missing coordinates")
}

func TestWriteChunkedAttemptsEveryChunk(t *testing.T) {
	ctx := context.Background()
	calls := 0
	var sizes []int

	store := storeFunc{
		insert: func(rows [][]any) error {
			calls++
			sizes = append(sizes, len(rows))
			if calls == 2 {
				return context.DeadlineExceeded
			}
			return nil
		},
	}

	rows := make([][]any, 5)
	for i := range rows {
		rows[i] = []any{i}
	}

	err := writeChunked(ctx, store, "class_schedule", []string{"n"}, nil, rows, 2)
	require.ErrorContains(t, err, "1/3 chunks failed")
	require.Equal(t, []int{2, 2, 1}, sizes)
}

// storeFunc adapts a single insert func to the Store interface.
type storeFunc struct {
	insert func(rows [][]any) error
}

func (s storeFunc) Insert(_ context.Context, _ string, _ []string, rows [][]any) error {
	return s.insert(rows)
}

func (s storeFunc) Upsert(_ context.Context, _ string, _ []string, _ []string, rows [][]any) error {
	return s.insert(rows)
}

func (s storeFunc) DeleteAll(context.Context, string) error { return nil }

func (s storeFunc) Count(context.Context, string) (int, error) { return 0, nil }
