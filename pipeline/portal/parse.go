package portal

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"spots-backend/lib/htmlutil"
	"spots-backend/pipeline/schedule"

	"github.com/PuerkitoBio/goquery"
)

// course group anchors carry titles like
// "Collapse section ACG 2021 - Principles of Financial Accounting"
// ("Expand" when the group was never opened).
var courseHeaderRegex = regexp.MustCompile(`(?:Collapse|Expand) section ([A-Z]{3} \d{4}) - (.+)`)

// ParseResults extracts the ordered course list from a rendered
// results page. Row-level oddities are logged and skipped; only a
// page that cannot be parsed as HTML at all is an error.
func ParseResults(html string) ([]schedule.Course, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	var courses []schedule.Course
	doc.Find("a[title]").Each(func(_ int, header *goquery.Selection) {
		match := courseHeaderRegex.FindStringSubmatch(header.AttrOr("title", ""))
		if match == nil {
			return
		}

		course := schedule.Course{
			Number: match[1],
			Title:  strings.TrimSpace(match[2]),
		}

		// scope the meeting rows to this course's result groupbox,
		// row ids repeat across groups
		group := header.Closest(`div[id^="win0divSSR_CLSRSLT_WRK_GROUPBOX2"]`)
		if group.Length() == 0 {
			slog.Warn("course header without enclosing groupbox", "course", course.Number)
			return
		}

		group.Find(`tr[id^="trSSR_CLSRCH_MTG1"]`).Each(func(_ int, row *goquery.Selection) {
			course.Sections = append(course.Sections, parseMeetingRow(row)...)
		})

		if len(course.Sections) > 0 {
			courses = append(courses, course)
		}
	})

	return courses, nil
}

// parseMeetingRow turns one meeting row into zero or more sections.
// The three cells each hold one line per concurrent meeting pattern,
// so the lines are padded to a common length and zipped index-wise.
func parseMeetingRow(row *goquery.Selection) (sections []schedule.Section) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("skipping unparseable meeting row", "panic", r)
			sections = nil
		}
	}()

	dayTimes := spanLines(row, "MTG_DAYTIME")
	rooms := spanLines(row, "MTG_ROOM")
	dates := spanLines(row, "MTG_TOPIC")

	n := len(dayTimes)
	if len(rooms) > n {
		n = len(rooms)
	}
	if len(dates) > n {
		n = len(dates)
	}

	for i := 0; i < n; i++ {
		dayTime := lineAt(dayTimes, i)
		room := lineAt(rooms, i)
		date := lineAt(dates, i)

		timeSlot := schedule.ParseTime(dayTime)
		location := schedule.ParseLocation(room)
		if timeSlot == nil || location == nil {
			continue
		}

		startDate, endDate := schedule.ParseDateRange(date)
		sections = append(sections, schedule.Section{
			Time:      timeSlot,
			Location:  location,
			Days:      schedule.ParseDays(dayTime),
			StartDate: startDate,
			EndDate:   endDate,
		})
	}
	return sections
}

func spanLines(row *goquery.Selection, idPrefix string) []string {
	span := row.Find(fmt.Sprintf(`span[id^=%q]`, idPrefix)).First()
	if span.Length() == 0 {
		return nil
	}
	return htmlutil.TextLines(span.Nodes[0])
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return strings.TrimSpace(lines[i])
	}
	return ""
}
