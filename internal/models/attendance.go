package models

import "time"

// Attendance is the DB row for one (user, org, day) clock record. Operations
// is stored as a JSONB document; the repository handles (de)serialization.
type Attendance struct {
	AttendanceID     string     `db:"attendance_id"`
	UserID           string     `db:"user_id"`
	OrgID            string     `db:"org_id"`
	Date             time.Time  `db:"date"`
	Status           string     `db:"status"`
	ClockIn          *time.Time `db:"clock_in"`
	LunchBreakOut    *time.Time `db:"lunch_break_out"`
	LunchBreakReturn *time.Time `db:"lunch_break_return"`
	ClockOut         *time.Time `db:"clock_out"`
	Operations       []byte     `db:"operations"`
	TimesUpdated     int        `db:"times_updated"`
	TotalWorkSeconds int64      `db:"total_work_seconds"`
	TotalBreakSecond int64      `db:"total_break_seconds"`
	WasLate          bool       `db:"was_late"`
	EarlyOut         bool       `db:"early_out"`
}
