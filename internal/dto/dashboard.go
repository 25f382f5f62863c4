package dto

import "github.com/campusdocs/doctrack-api/internal/models"

// DashboardResponse is the cached per-viewer summary payload.
type DashboardResponse struct {
	Summary   models.DashboardSummary `json:"summary"`
	Dashboard models.RoleConfig       `json:"dashboard"`
	CacheHit  bool                    `json:"-"`
}

// ExportQuery selects the document register export format.
type ExportQuery struct {
	Format string `form:"format"`
}

// ExportResponse returns the signed download token for a generated export.
type ExportResponse struct {
	Filename    string `json:"filename"`
	Format      string `json:"format"`
	DownloadURL string `json:"download_url"`
	ExpiresAt   string `json:"expires_at"`
}
