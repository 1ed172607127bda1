package social

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"go.uber.org/zap"
)

// MaxReportNoteLength is the longest report note accepted, in characters
const MaxReportNoteLength = 1000

// ReportReasonOption pairs a report reason with the label shown to viewers
type ReportReasonOption struct {
	Reason models.ReportReason `json:"reason"`
	Label  string              `json:"label"`
}

// ReportReasons lists the reasons a viewer can pick, in display order
var ReportReasons = []ReportReasonOption{
	{models.ReportReasonUnderaged, "Underaged"},
	{models.ReportReasonHate, "Racist / Hate-Based Language Or Actions"},
	{models.ReportReasonBestiality, "Animals / Acts Of Bestiality"},
	{models.ReportReasonSexualAssault, "Rape / Sexual Assault"},
	{models.ReportReasonViolence, "Violence / Death / Disturbing Content"},
	{models.ReportReasonCopyright, "Copyright / I Own This Content"},
}

// ParseReportReason accepts a reason or its label, case-insensitively
func ParseReportReason(s string) (models.ReportReason, error) {
	s = strings.TrimSpace(s)
	for _, opt := range ReportReasons {
		if strings.EqualFold(s, string(opt.Reason)) || strings.EqualFold(s, opt.Label) {
			return opt.Reason, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReportReason, s)
}

// SubmitReport files a pending report against mediaID. reporterID may be
// empty for anonymous viewers.
func (s *Service) SubmitReport(ctx context.Context, reporterID string, mediaID int64, reason, note string) (*models.Report, error) {
	if mediaID <= 0 {
		return nil, repository.ErrInvalidInput
	}
	r, err := ParseReportReason(reason)
	if err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > MaxReportNoteLength {
		return nil, ErrReportNoteTooLong
	}
	if _, err := s.media.GetMedia(ctx, mediaID); err != nil {
		return nil, err
	}

	report := &models.Report{
		MediaID: mediaID,
		Reason:  r,
		Status:  models.ReportStatusPending,
	}
	if reporterID != "" {
		report.ReporterID = &reporterID
	}
	if note != "" {
		report.Note = &note
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}

	metrics.Get().App.ReportsTotal.WithLabelValues(string(r)).Inc()
	logger.Log.Info("Content reported",
		logger.WithMediaID(mediaID),
		logger.WithViewerID(reporterID),
		zap.String("reason", string(r)),
		zap.Int64("report_id", report.ID),
	)
	return report, nil
}
