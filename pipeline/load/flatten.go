package load

import (
	"fmt"
	"sort"

	"spots-backend/pipeline/schedule"
)

// BuildingRow is one row of the buildings table: coordinates plus an
// open/close column pair per weekday.
type BuildingRow struct {
	Name      string
	Latitude  float64
	Longitude float64
	Hours     map[string]schedule.DayHours
}

type RoomRow struct {
	BuildingName string
	RoomNumber   string
}

// ClassScheduleRow is one meeting on one weekday. A section meeting
// three days a week becomes three rows.
type ClassScheduleRow struct {
	BuildingName string
	RoomNumber   string
	CourseCode   string
	CourseTitle  string
	StartTime    string
	EndTime      string
	DayOfWeek    string
	StartDate    string
	EndDate      string
}

// Dataset holds flattened rows ready for the store, in deterministic
// building/room order.
type Dataset struct {
	Buildings []BuildingRow
	Rooms     []RoomRow
	Schedules []ClassScheduleRow
}

// Flatten converts an enriched document into relational rows. A
// duplicate (building, room) pair fails the whole flatten; it would
// silently merge two rooms' schedules.
func Flatten(doc schedule.BuildingDocument) (Dataset, error) {
	var data Dataset
	seenRooms := map[RoomRow]bool{}

	for _, code := range sortedCodes(doc.Buildings) {
		building := doc.Buildings[code]

		row := BuildingRow{Name: code, Hours: building.Hours}
		if building.Coordinates != nil {
			row.Latitude = building.Coordinates.Latitude
			row.Longitude = building.Coordinates.Longitude
		}
		data.Buildings = append(data.Buildings, row)

		for _, room := range sortedRooms(building.Rooms) {
			key := RoomRow{BuildingName: code, RoomNumber: room}
			if seenRooms[key] {
				return Dataset{}, fmt.Errorf("duplicate room %s in building %s", room, code)
			}
			seenRooms[key] = true
			data.Rooms = append(data.Rooms, key)

			for _, meeting := range building.Rooms[room] {
				for _, day := range meeting.Days {
					data.Schedules = append(data.Schedules, ClassScheduleRow{
						BuildingName: code,
						RoomNumber:   room,
						CourseCode:   meeting.Course,
						CourseTitle:  meeting.Title,
						StartTime:    meeting.Time.Start,
						EndTime:      meeting.Time.End,
						DayOfWeek:    day,
						StartDate:    meeting.StartDate,
						EndDate:      meeting.EndDate,
					})
				}
			}
		}
	}

	return data, nil
}

// ExpectedCounts recomputes row counts straight from the document,
// independently of Flatten, so the two can be checked against each
// other before anything is written.
type ExpectedCounts struct {
	Buildings int
	Rooms     int
	Schedules int
}

func CountExpected(doc schedule.BuildingDocument) ExpectedCounts {
	counts := ExpectedCounts{Buildings: len(doc.Buildings)}
	for _, building := range doc.Buildings {
		counts.Rooms += len(building.Rooms)
		for _, meetings := range building.Rooms {
			for _, meeting := range meetings {
				counts.Schedules += len(meeting.Days)
			}
		}
	}
	return counts
}

// VerifyCounts cross-checks a flattened dataset against counts taken
// from the source document.
func VerifyCounts(data Dataset, expected ExpectedCounts) error {
	if len(data.Buildings) != expected.Buildings {
		return fmt.Errorf("building count mismatch: expected %d, got %d", expected.Buildings, len(data.Buildings))
	}
	if len(data.Rooms) != expected.Rooms {
		return fmt.Errorf("room count mismatch: expected %d, got %d", expected.Rooms, len(data.Rooms))
	}
	if len(data.Schedules) != expected.Schedules {
		return fmt.Errorf("schedule count mismatch: expected %d, got %d", expected.Schedules, len(data.Schedules))
	}
	return nil
}

func sortedCodes(buildings map[string]*schedule.Building) []string {
	codes := make([]string, 0, len(buildings))
	for code := range buildings {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func sortedRooms(rooms map[string][]schedule.ClassMeeting) []string {
	names := make([]string, 0, len(rooms))
	for name := range rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
