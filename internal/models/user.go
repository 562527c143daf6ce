package models

import (
	"database/sql"
	"time"
)

// User represents a user row, including credential and token columns used by
// the authentication flows.
type User struct {
	UserID       string `json:"userID" db:"user_id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`

	// Refresh token at rest (hash only).
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"`

	// Pending verification OTP at rest (hash only).
	VerificationOTPHash   sql.NullString `db:"verification_otp_hash"`
	VerificationOTPExpiry sql.NullTime   `db:"verification_otp_expiry"`
}
