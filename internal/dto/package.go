package dto

import "github.com/noah-isme/program-cycles-api/internal/models"

// PackageOptionView describes a purchasable package.
type PackageOptionView struct {
	Package   models.PackageOption `json:"package"`
	Tiers     []models.Tier        `json:"tiers"`
	EntryTier models.Tier          `json:"entryTier"`
}
