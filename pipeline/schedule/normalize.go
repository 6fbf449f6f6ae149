package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dayTokens = []struct {
	abbrev string
	code   string
}{
	{"Mo", "M"},
	{"Tu", "T"},
	{"We", "W"},
	{"Th", "R"},
	{"Fr", "F"},
	{"Sa", "S"},
	{"Su", "U"},
}

// ParseDays extracts single-letter day codes from a portal day/time
// string like "TuTh 10:30AM - 11:50AM". When no two-letter token is
// present it falls back to bare M/W/F letters, which some legacy rows
// still use.
func ParseDays(dayStr string) []string {
	var days []string
	for _, t := range dayTokens {
		if strings.Contains(dayStr, t.abbrev) {
			days = append(days, t.code)
		}
	}
	if len(days) > 0 {
		return days
	}

	if strings.Contains(dayStr, "M") && !strings.Contains(dayStr, "Mo") {
		days = append(days, "M")
	}
	if strings.Contains(dayStr, "W") && !strings.Contains(dayStr, "We") {
		days = append(days, "W")
	}
	if strings.Contains(dayStr, "F") && !strings.Contains(dayStr, "Fr") {
		days = append(days, "F")
	}
	return days
}

var timeRangeRegex = regexp.MustCompile(`(\d{1,2}:\d{2}[AP]M)\s*-\s*(\d{1,2}:\d{2}[AP]M)`)

// ParseTime converts "10:30AM - 11:50AM" into a 24h TimeSlot. TBA,
// ARR and anything that does not match come back nil; scraped text is
// never a fatal condition here.
func ParseTime(timeStr string) *TimeSlot {
	if timeStr == "" || strings.Contains(timeStr, "TBA") || strings.Contains(timeStr, "ARR") {
		return nil
	}

	match := timeRangeRegex.FindStringSubmatch(timeStr)
	if match == nil {
		return nil
	}

	start, err := time.Parse("3:04PM", match[1])
	if err != nil {
		return nil
	}
	end, err := time.Parse("3:04PM", match[2])
	if err != nil {
		return nil
	}

	return &TimeSlot{
		Start: start.Format("15:04"),
		End:   end.Format("15:04"),
	}
}

// ParseLocation splits "ENG2 0302" into building and room codes.
// Untracked locations (empty, TBA, WEB) and strings with fewer than
// two tokens come back nil.
func ParseLocation(roomStr string) *Location {
	if roomStr == "" || strings.Contains(roomStr, "TBA") || strings.Contains(roomStr, "WEB") {
		return nil
	}

	parts := strings.Fields(roomStr)
	if len(parts) < 2 {
		return nil
	}
	return &Location{
		Building: parts[0],
		Room:     parts[1],
	}
}

var dateRangeRegex = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s*-\s*(\d{2}/\d{2}/\d{4})`)

// ParseDateRange converts "01/12/2026 - 05/05/2026" into a pair of
// ISO dates, or ("", "") when the text does not carry a range.
func ParseDateRange(dateStr string) (string, string) {
	match := dateRangeRegex.FindStringSubmatch(dateStr)
	if match == nil {
		return "", ""
	}

	start, err := time.Parse("01/02/2006", match[1])
	if err != nil {
		return "", ""
	}
	end, err := time.Parse("01/02/2006", match[2])
	if err != nil {
		return "", ""
	}

	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// ConvertClockTime converts a configured building-hours clock time
// like "7:30AM" or "10PM" to 24h form. "LOCKED" means closed (nil).
// "12AM" is pinned to "23:59", treating it as end of day. Unlike the
// scrape-side parsers this one only ever sees reference data, so a
// string it cannot read is an error.
func ConvertClockTime(timeStr string) (*string, error) {
	if timeStr == "LOCKED" {
		return nil, nil
	}

	timeStr = strings.TrimSpace(timeStr)

	upper := strings.ToUpper(timeStr)
	if upper == "12AM" || upper == "12:00AM" {
		v := "23:59"
		return &v, nil
	}

	layout := "3PM"
	if strings.Contains(timeStr, ":") {
		layout = "3:04PM"
	}
	t, err := time.Parse(layout, timeStr)
	if err != nil {
		return nil, fmt.Errorf("converting clock time %q: %w", timeStr, err)
	}

	v := t.Format("15:04")
	return &v, nil
}
