package dto

import (
	"time"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

// ProgramOverview is the coordinator dashboard payload.
type ProgramOverview struct {
	Participants   models.ParticipantStatusCounts `json:"participants"`
	PendingReview  int                            `json:"pendingReview"`
	PendingPayment int                            `json:"pendingPayment"`
	OpenCycles     []models.CycleView             `json:"openCycles"`
	GeneratedAt    time.Time                      `json:"generatedAt"`
}
