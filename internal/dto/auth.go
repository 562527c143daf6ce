package dto

// SignInEmailRequest is the payload for email/password sign-in.
type SignInEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	OrgID    string `json:"orgID" binding:"omitempty,uuid"`
}

// SendVerificationOTPRequest asks for a one-time code to be dispatched.
// Type names the flow the code is for and is reflected into the audit action.
type SendVerificationOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Type  string `json:"type" binding:"required,oneof=sign-in email-verification forget-password"`
}
