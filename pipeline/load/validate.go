package load

import (
	"errors"
	"fmt"
	"time"

	"spots-backend/pipeline/schedule"
)

// ValidateBuildings checks that an enriched document carries everything
// the relational schema needs. All problems are collected so one run
// reports every bad record, not just the first.
func ValidateBuildings(doc schedule.BuildingDocument) error {
	var errs []error

	for _, code := range sortedCodes(doc.Buildings) {
		building := doc.Buildings[code]

		if building.Coordinates == nil {
			errs = append(errs, fmt.Errorf("building %s: missing coordinates", code))
		}
		if len(building.Rooms) == 0 {
			errs = append(errs, fmt.Errorf("building %s: no rooms", code))
		}

		for _, day := range schedule.WeekdayNames {
			if _, ok := building.Hours[day]; !ok {
				errs = append(errs, fmt.Errorf("building %s: missing hours for %s", code, day))
			}
		}

		for _, room := range sortedRooms(building.Rooms) {
			for i, meeting := range building.Rooms[room] {
				if err := validateMeeting(meeting); err != nil {
					errs = append(errs, fmt.Errorf("building %s room %s meeting %d: %w", code, room, i, err))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func validateMeeting(m schedule.ClassMeeting) error {
	var errs []error
	if m.Course == "" {
		errs = append(errs, errors.New("missing course"))
	}
	if m.Title == "" {
		errs = append(errs, errors.New("missing title"))
	}
	if m.Time == nil {
		errs = append(errs, errors.New("missing time"))
	}
	if len(m.Days) == 0 {
		errs = append(errs, errors.New("missing days"))
	}
	if m.StartDate == "" {
		errs = append(errs, errors.New("missing start date"))
	}
	if m.EndDate == "" {
		errs = append(errs, errors.New("missing end date"))
	}
	return errors.Join(errs...)
}

// ValidateTerms checks the academic calendar reference rows.
func ValidateTerms(terms []schedule.AcademicTerm) error {
	var errs []error

	for i, term := range terms {
		if term.AcademicYear == "" || term.Term == "" || term.StartDate == "" || term.EndDate == "" {
			errs = append(errs, fmt.Errorf("term %d: missing required fields", i))
			continue
		}
		if term.PartOfTerm != nil && *term.PartOfTerm != "A" && *term.PartOfTerm != "B" {
			errs = append(errs, fmt.Errorf("term %d: invalid part_of_term %q", i, *term.PartOfTerm))
		}

		start, err := time.Parse("2006-01-02", term.StartDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("term %d: invalid start date %q", i, term.StartDate))
			continue
		}
		end, err := time.Parse("2006-01-02", term.EndDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("term %d: invalid end date %q", i, term.EndDate))
			continue
		}
		if !end.After(start) {
			errs = append(errs, fmt.Errorf("term %d: end date %s is not after start date %s", i, term.EndDate, term.StartDate))
		}
	}

	return errors.Join(errs...)
}
