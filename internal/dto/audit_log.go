package dto

import (
	"time"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
)

// ListAuditLogsRequest binds the audit log listing query parameters.
// ActionID takes precedence over Type and Severity when present.
type ListAuditLogsRequest struct {
	Limit    int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset,default=0" binding:"omitempty,min=0"`
	Sort     string `form:"sort,default=desc" binding:"omitempty,oneof=asc desc"`
	ActionID string `form:"actionId" binding:"omitempty"`
	Type     string `form:"type" binding:"omitempty,oneof=authentication authorization api unknown"`
	Severity string `form:"severity" binding:"omitempty,oneof=info warning error severe unknown"`
}

// AuditLogResponse defines the data returned for one audit entry.
type AuditLogResponse struct {
	AuditLogID string    `json:"auditLogID"`
	UserID     string    `json:"userID"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	Severity   string    `json:"severity"`
	Type       string    `json:"type"`
}

// ListAuditLogsResponse pages audit entries; Total is the full matching-row
// count, not len(Data).
type ListAuditLogsResponse struct {
	Data  []AuditLogResponse `json:"data"`
	Total int64              `json:"total"`
}

// ToAuditLogResponse converts a domain.AuditLog to AuditLogResponse.
func ToAuditLogResponse(l domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		AuditLogID: l.AuditLogID,
		UserID:     l.UserID,
		Action:     l.Action,
		Timestamp:  l.Timestamp,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		Severity:   string(l.Severity),
		Type:       string(l.Type),
	}
}

// ToListAuditLogsResponse maps a page of domain entries plus its total count.
func ToListAuditLogsResponse(logs []domain.AuditLog, total int64) ListAuditLogsResponse {
	data := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		data[i] = ToAuditLogResponse(l)
	}
	return ListAuditLogsResponse{Data: data, Total: total}
}
