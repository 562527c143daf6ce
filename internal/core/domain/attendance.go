package domain

import (
	"strings"
	"time"
)

// AttendanceStatus is the per-day clock state of a member.
type AttendanceStatus string

const (
	// StatusNone is the implicit state before any record exists for the day.
	StatusNone              AttendanceStatus = "NONE"
	StatusClockedIn         AttendanceStatus = "CLOCKED_IN"
	StatusLunchBreakStarted AttendanceStatus = "LUNCH_BREAK_STARTED"
	StatusLunchBreakEnded   AttendanceStatus = "LUNCH_BREAK_ENDED"
	StatusClockedOut        AttendanceStatus = "CLOCKED_OUT"
)

// ClockTransition identifies one of the four daily clock operations.
type ClockTransition string

const (
	TransitionClockIn    ClockTransition = "clock-in"
	TransitionLunchStart ClockTransition = "lunch-start"
	TransitionLunchEnd   ClockTransition = "lunch-end"
	TransitionClockOut   ClockTransition = "clock-out"
)

// OperationType records how a clock operation was captured.
type OperationType string

const (
	OperationWebapp OperationType = "webapp"
	OperationNFC    OperationType = "nfc"
	OperationQR     OperationType = "qr"
)

// Operation is one append-only provenance entry per successful transition.
type Operation struct {
	ID        string        `json:"id"`
	Type      OperationType `json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Attendance is the single clock record for a (user, organization, day)
// triple. Date is anchored at start-of-day in the organization's timezone.
type Attendance struct {
	AttendanceID     string           `json:"attendanceID"`
	UserID           string           `json:"userID"`
	OrgID            string           `json:"orgID"`
	Date             time.Time        `json:"date"`
	Status           AttendanceStatus `json:"status"`
	ClockIn          *time.Time       `json:"clockIn,omitempty"`
	LunchBreakOut    *time.Time       `json:"lunchBreakOut,omitempty"`
	LunchBreakReturn *time.Time       `json:"lunchBreakReturn,omitempty"`
	ClockOut         *time.Time       `json:"clockOut,omitempty"`
	Operations       []Operation      `json:"operation"`
	TimesUpdated     int              `json:"timesUpdated"`
	TotalWorkSeconds int64            `json:"totalWorkSeconds"`
	TotalBreakSecond int64            `json:"totalBreakSeconds"`
	WasLate          bool             `json:"wasLate"`
	EarlyOut         bool             `json:"earlyOut"`
}

// CurrentStatus returns StatusNone for a nil record, the stored status otherwise.
func (a *Attendance) CurrentStatus() AttendanceStatus {
	if a == nil {
		return StatusNone
	}
	return a.Status
}

// NextStatus maps a transition to the state it enters.
func (t ClockTransition) NextStatus() AttendanceStatus {
	switch t {
	case TransitionClockIn:
		return StatusClockedIn
	case TransitionLunchStart:
		return StatusLunchBreakStarted
	case TransitionLunchEnd:
		return StatusLunchBreakEnded
	case TransitionClockOut:
		return StatusClockedOut
	}
	return StatusNone
}

// CanTransition reports whether the transition is legal from the given state.
// The allowed predecessor sets are exhaustive over all five states so a new
// status cannot be added without the compiler flagging these switches.
func (t ClockTransition) CanTransition(from AttendanceStatus) bool {
	switch t {
	case TransitionClockIn:
		return from == StatusNone
	case TransitionLunchStart:
		return from == StatusClockedIn
	case TransitionLunchEnd:
		return from == StatusLunchBreakStarted
	case TransitionClockOut:
		return from == StatusClockedIn || from == StatusLunchBreakEnded
	}
	return false
}

// nfcMarker is sent by the companion app; qrMarker by the kiosk scanner.
const (
	nfcMarker = "JelliNFC"
	qrMarker  = "JelliQR"
)

// ClassifyProvenance infers the capture channel from the request User-Agent.
// Unknown or absent agents default to webapp.
func ClassifyProvenance(userAgent string) OperationType {
	switch {
	case strings.Contains(userAgent, nfcMarker):
		return OperationNFC
	case strings.Contains(userAgent, qrMarker):
		return OperationQR
	default:
		return OperationWebapp
	}
}
