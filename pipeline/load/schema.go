package load

// Schema creates the destination tables. The dev environment and the
// tests apply it to sqlite; the production database carries the same
// shape with real date/time column types.
const Schema = `
CREATE TABLE IF NOT EXISTS buildings (
	name TEXT PRIMARY KEY,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	monday_open TEXT, monday_close TEXT,
	tuesday_open TEXT, tuesday_close TEXT,
	wednesday_open TEXT, wednesday_close TEXT,
	thursday_open TEXT, thursday_close TEXT,
	friday_open TEXT, friday_close TEXT,
	saturday_open TEXT, saturday_close TEXT,
	sunday_open TEXT, sunday_close TEXT
);

CREATE TABLE IF NOT EXISTS rooms (
	building_name TEXT NOT NULL,
	room_number TEXT NOT NULL,
	PRIMARY KEY (building_name, room_number)
);

CREATE TABLE IF NOT EXISTS class_schedule (
	building_name TEXT NOT NULL,
	room_number TEXT NOT NULL,
	course_code TEXT NOT NULL,
	course_title TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	day_of_week TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS academic_terms (
	academic_year TEXT NOT NULL,
	term TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	part_of_term TEXT
);
`
