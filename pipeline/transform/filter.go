package transform

import (
	"time"

	"spots-backend/lib/timezone"
	"spots-backend/pipeline/schedule"
)

// FilterConfig controls which buildings survive the filter stage.
type FilterConfig struct {
	// MinRooms is the smallest room count a building may have and
	// still be kept. Buildings with fewer rooms are too small to be
	// useful as study spots.
	MinRooms int
	// ExcludedBuildings are dropped regardless of size: performance
	// venues and off-campus sites that students cannot study in.
	ExcludedBuildings map[string]bool
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinRooms: 4,
		ExcludedBuildings: map[string]bool{
			"DPAC": true,
			"RSH":  true,
			"CROL": true,
		},
	}
}

// Filter drops excluded and undersized buildings. Surviving buildings
// pass through with their rooms untouched, but total_sections is
// recomputed from the room contents rather than trusted from the
// previous stage.
func Filter(doc schedule.BuildingDocument, cfg FilterConfig) schedule.BuildingDocument {
	buildings := map[string]*schedule.Building{}

	for code, building := range doc.Buildings {
		if cfg.ExcludedBuildings[code] {
			continue
		}
		if len(building.Rooms) < cfg.MinRooms {
			continue
		}

		total := 0
		for _, meetings := range building.Rooms {
			total += len(meetings)
		}

		buildings[code] = &schedule.Building{
			Rooms:         building.Rooms,
			TotalSections: total,
			Coordinates:   building.Coordinates,
			Hours:         building.Hours,
		}
	}

	return schedule.BuildingDocument{
		LastUpdated: timezone.Now().Format(time.RFC3339),
		Term:        doc.Term,
		Buildings:   buildings,
	}
}
