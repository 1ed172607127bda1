package models

import (
	"time"
)

// ReportReason is why a media item was reported
type ReportReason string

const (
	ReportReasonUnderaged     ReportReason = "underaged"
	ReportReasonHate          ReportReason = "hate"
	ReportReasonBestiality    ReportReason = "bestiality"
	ReportReasonSexualAssault ReportReason = "sexual-assault"
	ReportReasonViolence      ReportReason = "violence"
	ReportReasonCopyright     ReportReason = "copyright"
)

// ReportStatus tracks moderation of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is a viewer's report of a media item for moderation
type Report struct {
	ID      int64 `gorm:"primaryKey" json:"id"`
	MediaID int64 `gorm:"not null;index" json:"media_id"`
	// ReporterID is null for anonymous reports
	ReporterID *string `gorm:"type:uuid;index" json:"reporter_id,omitempty"`

	Reason ReportReason `gorm:"not null;index" json:"reason"`
	Note   *string      `gorm:"type:text" json:"note,omitempty"`
	Status ReportStatus `gorm:"not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
