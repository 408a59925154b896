package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signaltracker/src/database"
	"signaltracker/src/model"
)

// ReportRepository stores case reports. Reports are append-only.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *ReportRepository) WithDB(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// PutReport stores report unless one already exists for the signal.
func (r *ReportRepository) PutReport(ctx context.Context, report *model.CaseReport) error {
	fields := map[string]interface{}{
		"repo":      "ReportRepository",
		"op":        "PutReport",
		"signal_id": report.SignalID,
		"ticker":    report.Ticker,
	}
	logger.WithFields(fields).Debug("Saving case report")

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(report)
	if res.Error != nil {
		logger.WithFields(fields).WithError(res.Error).Error("Failed to save case report")
		return res.Error
	}
	if res.RowsAffected == 0 {
		logger.WithFields(fields).Debug("Case report already stored")
		return nil
	}

	logger.WithFields(fields).Info("Case report saved")
	return nil
}

// GetReport returns the report for signalID, or (nil, nil) when there is none.
func (r *ReportRepository) GetReport(ctx context.Context, signalID string) (*model.CaseReport, error) {
	var rep model.CaseReport
	err := r.db.WithContext(ctx).First(&rep, "signal_id = ?", signalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":      "ReportRepository",
			"op":        "GetReport",
			"signal_id": signalID,
		}).WithError(err).Error("Failed to load case report")
		return nil, err
	}
	return &rep, nil
}

// ListReports returns every report, newest first.
func (r *ReportRepository) ListReports(ctx context.Context) ([]model.CaseReport, error) {
	var out []model.CaseReport
	if err := r.db.WithContext(ctx).Order("generated_at DESC").Find(&out).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ReportRepository",
			"op":   "ListReports",
		}).WithError(err).Error("Failed to list case reports")
		return nil, err
	}
	return out, nil
}

// Clear deletes every report.
func (r *ReportRepository) Clear(ctx context.Context) error {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.CaseReport{})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ReportRepository",
			"op":   "Clear",
		}).WithError(res.Error).Error("Failed to clear case reports")
		return res.Error
	}
	logger.WithFields(map[string]interface{}{
		"repo":    "ReportRepository",
		"op":      "Clear",
		"deleted": res.RowsAffected,
	}).Warn("All case reports deleted")
	return nil
}
