package dto

// RosterExportRequest selects a cycle roster and output format.
type RosterExportRequest struct {
	CycleID string `form:"cycleId" validate:"required"`
	Format  string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
