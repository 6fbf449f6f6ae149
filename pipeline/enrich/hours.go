package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"spots-backend/pipeline/schedule"
)

// Opening hours are maintained per day group, the way the campus
// facilities page publishes them.
var dayGroups = map[string][]string{
	"M-TH": {"monday", "tuesday", "wednesday", "thursday"},
	"F":    {"friday"},
	"SAT":  {"saturday"},
	"SUN":  {"sunday"},
}

// HoursTable maps building codes to day-group hour ranges, e.g.
// {"BA1": {"M-TH": "7:30AM-10:00PM", "F": "7:30AM-6:00PM"}}.
type HoursTable map[string]map[string]string

// ExpandDayGroups converts one building's day-group hours into
// per-weekday open/close pairs. A group of "LOCKED" marks every day in
// the group closed. Unknown groups and ranges without a hyphen are
// logged and skipped; a clock time that cannot be parsed is an error,
// since the hours table is maintained by hand and a typo there should
// stop the run.
func ExpandDayGroups(ctx context.Context, groups map[string]string) (map[string]schedule.DayHours, error) {
	expanded := map[string]schedule.DayHours{}

	for group, hours := range groups {
		days, ok := dayGroups[group]
		if !ok {
			slog.WarnContext(ctx, "unknown day group in hours table", "group", group)
			continue
		}

		if hours == "LOCKED" {
			for _, day := range days {
				expanded[day] = schedule.DayHours{}
			}
			continue
		}

		// Split on the last hyphen so closing times like "10:00PM"
		// keep their own text intact.
		idx := strings.LastIndex(hours, "-")
		if idx < 0 {
			slog.WarnContext(ctx, "invalid hours range in hours table",
				"group", group,
				"hours", hours,
			)
			continue
		}

		opens, err := schedule.ConvertClockTime(strings.TrimSpace(hours[:idx]))
		if err != nil {
			return nil, fmt.Errorf("day group %s: %w", group, err)
		}
		closes, err := schedule.ConvertClockTime(strings.TrimSpace(hours[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("day group %s: %w", group, err)
		}

		for _, day := range days {
			expanded[day] = schedule.DayHours{Open: opens, Close: closes}
		}
	}

	return expanded, nil
}

// ApplyHours merges the hours table into the document in place and
// reports which buildings had no entry.
func ApplyHours(ctx context.Context, doc *schedule.BuildingDocument, table HoursTable) (Report, error) {
	ctx, span := tracer.Start(ctx, "ApplyHours")
	defer span.End()

	var report Report

	for _, code := range sortedCodes(doc.Buildings) {
		groups, ok := table[code]
		if !ok {
			report.Missing = append(report.Missing, code)
			continue
		}

		hours, err := ExpandDayGroups(ctx, groups)
		if err != nil {
			err = fmt.Errorf("building %s: %w", code, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Report{}, err
		}
		doc.Buildings[code].Hours = hours
		report.Updated++
	}

	return report, nil
}

// Report counts one enrichment pass over a building document.
type Report struct {
	Updated int
	Missing []string
}

func sortedCodes(buildings map[string]*schedule.Building) []string {
	codes := make([]string, 0, len(buildings))
	for code := range buildings {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
