package domain

import "time"

// OrganizationHours is the business-hours policy for an organization.
// Open and Close are local time-of-day strings ("HH:MM:SS"), GracePeriod is
// minutes of tolerance applied symmetrically around a scheduled time, and
// Timezone is the IANA identifier anchoring every "now"/"start of day"
// computation for this organization's attendance.
type OrganizationHours struct {
	Open        string `json:"open"`
	Close       string `json:"close"`
	GracePeriod int    `json:"gracePeriod"`
	Timezone    string `json:"timezone"`
}

// OrganizationSettings is the read-only policy input to the clock state machine.
type OrganizationSettings struct {
	Hours           OrganizationHours `json:"hours"`
	StrictLunchTime bool              `json:"strictLunchTime"`
}

// Organization represents a tenant owning members and attendance records.
type Organization struct {
	OrgID    string               `json:"orgID"`
	Name     string               `json:"name"`
	Settings OrganizationSettings `json:"settings"`
	AuditFields
}

// MemberRole defines the possible roles a user can have within an organization.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// LunchTimeFlexible disables window enforcement for a member's lunch start.
const LunchTimeFlexible = "flexible"

// Member represents the membership of a User in an Organization. LunchTime is
// either LunchTimeFlexible or a fixed "HH:MM:SS" anchoring the grace window;
// empty means lunch policy was never configured for this member.
type Member struct {
	UserID    string     `json:"userID"`
	OrgID     string     `json:"orgID"`
	Name      string     `json:"name"`
	Role      MemberRole `json:"role"`
	LunchTime string     `json:"lunchTime"`
	JoinedAt  time.Time  `json:"joinedAt"`
}
