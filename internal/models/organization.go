package models

import "time"

// Organization is the DB row for a tenant. Settings is a JSONB document
// decoded once by the repository; legacy rows may carry it double-encoded as
// a JSON string, which the repository also unwraps.
type Organization struct {
	OrgID    string `db:"org_id"`
	Name     string `db:"name"`
	Settings []byte `db:"settings"`
	AuditFields
}

// Member is the DB row joining a user to an organization.
type Member struct {
	UserID    string    `db:"user_id"`
	OrgID     string    `db:"org_id"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	LunchTime string    `db:"lunch_time"`
	JoinedAt  time.Time `db:"joined_at"`
}
