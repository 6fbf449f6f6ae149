package load

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"spots-backend/pipeline/schedule"
)

var tracer = otel.Tracer("pipeline/load")

const (
	TableBuildings     = "buildings"
	TableRooms         = "rooms"
	TableClassSchedule = "class_schedule"
	TableAcademicTerms = "academic_terms"
)

var buildingColumns = func() []string {
	cols := []string{"name", "latitude", "longitude"}
	for _, day := range schedule.WeekdayNames {
		cols = append(cols, day+"_open", day+"_close")
	}
	return cols
}()

var roomColumns = []string{"building_name", "room_number"}

var scheduleColumns = []string{
	"building_name", "room_number",
	"course_code", "course_title",
	"start_time", "end_time",
	"day_of_week", "start_date", "end_date",
}

var termColumns = []string{"academic_year", "term", "start_date", "end_date", "part_of_term"}

type Config struct {
	// BatchSize caps rows per write. Zero means 500.
	BatchSize int
	// DryRun stops after validation and count verification.
	DryRun bool
}

type Result struct {
	Buildings int
	Rooms     int
	Schedules int
	Terms     int
	DryRun    bool
}

// Run validates an enriched document, flattens it and writes it to the
// store. Schedule rows (and term rows, when a calendar is supplied) are
// replaced wholesale; buildings and rooms are upserted so rows other
// tables reference stay put.
func Run(ctx context.Context, store Store, doc schedule.BuildingDocument, terms []schedule.AcademicTerm, cfg Config) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}

	if err := ValidateBuildings(doc); err != nil {
		return fail(fmt.Errorf("validating buildings: %w", err))
	}
	if err := ValidateTerms(terms); err != nil {
		return fail(fmt.Errorf("validating terms: %w", err))
	}

	data, err := Flatten(doc)
	if err != nil {
		return fail(err)
	}
	if err := VerifyCounts(data, CountExpected(doc)); err != nil {
		return fail(err)
	}

	result := Result{
		Buildings: len(data.Buildings),
		Rooms:     len(data.Rooms),
		Schedules: len(data.Schedules),
		Terms:     len(terms),
		DryRun:    cfg.DryRun,
	}
	span.SetAttributes(
		attribute.Int("buildings", result.Buildings),
		attribute.Int("rooms", result.Rooms),
		attribute.Int("schedules", result.Schedules),
		attribute.Int("terms", result.Terms),
	)
	if cfg.DryRun {
		return result, nil
	}

	// Schedules are always rebuilt from scratch; terms only when a
	// calendar was supplied.
	tablesToClear := []string{TableClassSchedule}
	if len(terms) > 0 {
		tablesToClear = append(tablesToClear, TableAcademicTerms)
	}
	for _, table := range tablesToClear {
		if err := clearTable(ctx, store, table); err != nil {
			return fail(err)
		}
	}

	if len(terms) > 0 {
		if err := writeChunked(ctx, store, TableAcademicTerms, termColumns, nil, termRows(terms), cfg.BatchSize); err != nil {
			return fail(err)
		}
	}
	if err := writeChunked(ctx, store, TableBuildings, buildingColumns, []string{"name"}, buildingRows(data.Buildings), cfg.BatchSize); err != nil {
		return fail(err)
	}
	if err := writeChunked(ctx, store, TableRooms, roomColumns, roomColumns, roomRows(data.Rooms), cfg.BatchSize); err != nil {
		return fail(err)
	}
	if err := writeChunked(ctx, store, TableClassSchedule, scheduleColumns, nil, scheduleRows(data.Schedules), cfg.BatchSize); err != nil {
		return fail(err)
	}

	// Buildings and rooms may legitimately hold rows from earlier
	// loads; schedules and terms were just rebuilt and must match
	// exactly.
	if err := verifyTableCount(ctx, store, TableBuildings, result.Buildings, false); err != nil {
		return fail(err)
	}
	if err := verifyTableCount(ctx, store, TableRooms, result.Rooms, false); err != nil {
		return fail(err)
	}
	if err := verifyTableCount(ctx, store, TableClassSchedule, result.Schedules, true); err != nil {
		return fail(err)
	}
	if len(terms) > 0 {
		if err := verifyTableCount(ctx, store, TableAcademicTerms, result.Terms, true); err != nil {
			return fail(err)
		}
	}

	return result, nil
}

func clearTable(ctx context.Context, store Store, table string) error {
	if err := store.DeleteAll(ctx, table); err != nil {
		return err
	}
	count, err := store.Count(ctx, table)
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("clearing %s: %d rows remain", table, count)
	}
	return nil
}

// writeChunked writes all chunks even after a failure, so one bad
// batch surfaces alongside everything else that would have failed.
func writeChunked(ctx context.Context, store Store, table string, columns []string, conflictColumns []string, rows [][]any, batchSize int) error {
	if len(rows) == 0 {
		slog.InfoContext(ctx, "no rows to write", "table", table)
		return nil
	}

	totalChunks := (len(rows) + batchSize - 1) / batchSize
	failed := 0
	var firstErr error

	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		chunk := rows[i:end]

		var err error
		if len(conflictColumns) > 0 {
			err = store.Upsert(ctx, table, columns, conflictColumns, chunk)
		} else {
			err = store.Insert(ctx, table, columns, chunk)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to write chunk",
				"table", table,
				"chunk", i/batchSize+1,
				"total_chunks", totalChunks,
				"err", err,
			)
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		slog.InfoContext(ctx, "wrote chunk",
			"table", table,
			"chunk", i/batchSize+1,
			"total_chunks", totalChunks,
			"rows", len(chunk),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d chunks failed for %s: %w", failed, totalChunks, table, firstErr)
	}
	return nil
}

func verifyTableCount(ctx context.Context, store Store, table string, expected int, exact bool) error {
	count, err := store.Count(ctx, table)
	if err != nil {
		return err
	}
	if exact && count != expected {
		return fmt.Errorf("%s count mismatch: expected %d, got %d", table, expected, count)
	}
	if !exact && count < expected {
		return fmt.Errorf("%s count too low: expected at least %d, got %d", table, expected, count)
	}
	return nil
}

func buildingRows(buildings []BuildingRow) [][]any {
	rows := make([][]any, 0, len(buildings))
	for _, b := range buildings {
		row := []any{b.Name, b.Latitude, b.Longitude}
		for _, day := range schedule.WeekdayNames {
			hours := b.Hours[day]
			row = append(row, hours.Open, hours.Close)
		}
		rows = append(rows, row)
	}
	return rows
}

func roomRows(rooms []RoomRow) [][]any {
	rows := make([][]any, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []any{r.BuildingName, r.RoomNumber})
	}
	return rows
}

func scheduleRows(schedules []ClassScheduleRow) [][]any {
	rows := make([][]any, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, []any{
			s.BuildingName, s.RoomNumber,
			s.CourseCode, s.CourseTitle,
			s.StartTime, s.EndTime,
			s.DayOfWeek, s.StartDate, s.EndDate,
		})
	}
	return rows
}

func termRows(terms []schedule.AcademicTerm) [][]any {
	rows := make([][]any, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, []any{t.AcademicYear, t.Term, t.StartDate, t.EndDate, t.PartOfTerm})
	}
	return rows
}
