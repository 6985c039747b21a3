package dto

import "github.com/noah-isme/program-cycles-api/internal/models"

// SubmitRegistrationRequest is the public intake form.
type SubmitRegistrationRequest struct {
	Name    string          `json:"name" validate:"required,max=120"`
	Email   string          `json:"email" validate:"required,email"`
	Package string          `json:"package" validate:"required,package_option"`
	Answers []models.Answer `json:"answers" validate:"dive"`
}

// ListRegistrationsRequest filters the review queue.
type ListRegistrationsRequest struct {
	Status   string `form:"status"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ConfirmPaymentRequest names where the paid registration is enrolled.
type ConfirmPaymentRequest struct {
	CycleID string `json:"cycleId" validate:"required"`
	Tier    string `json:"tier" validate:"omitempty,tier"`
}

// ReviewResult reports an approve or reject decision. A declined review
// returns the registration unchanged with the reason.
type ReviewResult struct {
	Registration models.Registration `json:"registration"`
	Applied      bool                `json:"applied"`
	Reason       string              `json:"reason,omitempty"`
}

// EnrollmentResult reports a payment confirmation. When applied, the
// registration is gone and the participant and cycle are returned; when
// declined, only the untouched registration is.
type EnrollmentResult struct {
	Participant  *models.Participant  `json:"participant,omitempty"`
	Cycle        *models.Cycle        `json:"cycle,omitempty"`
	Registration *models.Registration `json:"registration,omitempty"`
	Applied      bool                 `json:"applied"`
	Reason       string               `json:"reason,omitempty"`
}
