package transform

import (
	"sort"
	"time"

	"spots-backend/lib/timezone"
	"spots-backend/pipeline/schedule"
)

// ToBuildings reindexes a subject document by physical location:
// every located section becomes a ClassMeeting under its building and
// room. Section order within a room follows the scrape order.
func ToBuildings(doc schedule.SubjectDocument) schedule.BuildingDocument {
	buildings := map[string]*schedule.Building{}

	for _, subject := range doc.Subjects {
		for _, course := range subject.Courses {
			for _, section := range course.Sections {
				if section.Location == nil {
					continue
				}
				code := section.Location.Building
				room := section.Location.Room
				if code == "" || room == "" {
					continue
				}

				building := buildings[code]
				if building == nil {
					building = &schedule.Building{
						Rooms: map[string][]schedule.ClassMeeting{},
					}
					buildings[code] = building
				}

				building.Rooms[room] = append(building.Rooms[room], schedule.ClassMeeting{
					Course:    course.Number,
					Title:     course.Title,
					Time:      section.Time,
					Days:      section.Days,
					StartDate: section.StartDate,
					EndDate:   section.EndDate,
				})
				building.TotalSections++
			}
		}
	}

	return schedule.BuildingDocument{
		LastUpdated: timezone.Now().Format(time.RFC3339),
		Term:        doc.Term,
		Buildings:   buildings,
	}
}

type BuildingRooms struct {
	Code  string
	Rooms int
}

type Stats struct {
	Buildings     int
	Rooms         int
	TotalSections int
	TopBuildings  []BuildingRooms
}

// Summarize computes the counts the CLI reports after a transform,
// including the top ten buildings by room count.
func Summarize(doc schedule.BuildingDocument) Stats {
	stats := Stats{Buildings: len(doc.Buildings)}

	for code, b := range doc.Buildings {
		stats.Rooms += len(b.Rooms)
		stats.TotalSections += b.TotalSections
		stats.TopBuildings = append(stats.TopBuildings, BuildingRooms{
			Code:  code,
			Rooms: len(b.Rooms),
		})
	}

	sort.Slice(stats.TopBuildings, func(i, j int) bool {
		if stats.TopBuildings[i].Rooms != stats.TopBuildings[j].Rooms {
			return stats.TopBuildings[i].Rooms > stats.TopBuildings[j].Rooms
		}
		return stats.TopBuildings[i].Code < stats.TopBuildings[j].Code
	})
	if len(stats.TopBuildings) > 10 {
		stats.TopBuildings = stats.TopBuildings[:10]
	}

	return stats
}
