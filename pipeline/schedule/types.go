package schedule

// TimeSlot is a minute-precision 24h clock range, e.g. {"07:30", "08:50"}.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Location is a physical room, short codes, e.g. {"BA1", "O107"}.
type Location struct {
	Building string `json:"building"`
	Room     string `json:"room"`
}

// Section is one recurring meeting pattern of a course. Time and
// Location are nil when the portal lists the pattern as TBA/ARR/WEB;
// such sections are dropped before the building transform.
type Section struct {
	Time      *TimeSlot `json:"time"`
	Location  *Location `json:"location"`
	Days      []string  `json:"days"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

type Course struct {
	Number   string    `json:"number"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

type Subject struct {
	Code    string   `json:"code"`
	Courses []Course `json:"courses"`
}

// SubjectDocument is the first archive document, indexed by subject
// in the order the portal was scraped.
type SubjectDocument struct {
	LastUpdated string    `json:"last_updated"`
	Term        string    `json:"term"`
	Subjects    []Subject `json:"subjects"`
}

// ClassMeeting is a section flattened into a room, carrying the
// course identity it came from.
type ClassMeeting struct {
	Course    string    `json:"course"`
	Title     string    `json:"title"`
	Time      *TimeSlot `json:"time"`
	Days      []string  `json:"days"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

// DayHours is one weekday's opening range. Both fields nil means the
// building is locked that day.
type DayHours struct {
	Open  *string `json:"open"`
	Close *string `json:"close"`
}

// GeoJSON order is [longitude, latitude]; this struct is the
// unambiguous form used from the enrichment stage onward.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Building groups meetings by room. TotalSections is recomputed by
// every transform from the room contents, never carried over.
type Building struct {
	Rooms         map[string][]ClassMeeting `json:"rooms"`
	TotalSections int                       `json:"total_sections"`
	Coordinates   *Coordinates              `json:"coordinates,omitempty"`
	Hours         map[string]DayHours       `json:"hours,omitempty"`
}

// BuildingDocument is the shape of the derived, filtered and enriched
// archive documents.
type BuildingDocument struct {
	LastUpdated string               `json:"last_updated"`
	Term        string               `json:"term"`
	Buildings   map[string]*Building `json:"buildings"`
}

// AcademicTerm is one row of the academic calendar reference.
// PartOfTerm is nil for full-length terms, otherwise "A" or "B".
type AcademicTerm struct {
	AcademicYear string  `json:"academic_year"`
	Term         string  `json:"term"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	PartOfTerm   *string `json:"part_of_term,omitempty"`
}

// Weekdays in building-hours order.
var WeekdayNames = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}
