package dto

import "github.com/noah-isme/program-cycles-api/internal/models"

// ListParticipantsRequest filters the participant table.
type ListParticipantsRequest struct {
	CycleID  string `form:"cycleId"`
	Tier     string `form:"tier"`
	Status   string `form:"status"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToggleAttendanceRequest flips one program day. Day is zero based.
type ToggleAttendanceRequest struct {
	Day *int `json:"day" validate:"required,min=0,max=3"`
}

// PromoteRequest optionally moves the participant into a cycle of the next tier.
type PromoteRequest struct {
	CycleID string `json:"cycleId"`
}

// TransitionResult reports a lifecycle transition. When Applied is false the
// participant is returned unchanged and Reason says which guard declined it.
type TransitionResult struct {
	Participant models.Participant `json:"participant"`
	Applied     bool               `json:"applied"`
	Reason      string             `json:"reason,omitempty"`
}
