package usecase

import (
	"context"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/pkg/logger"
)

// HealthReporter upserts named vital rows after each phase. Reporting is
// observational only: a failed upsert is logged and swallowed so it can
// never alter the outcome of the phase it reports on.
type HealthReporter struct {
	vitals drepo.VitalsRepo
	log    *logger.Logger
}

func NewHealthReporter(vitals drepo.VitalsRepo, log *logger.Logger) *HealthReporter {
	return &HealthReporter{vitals: vitals, log: log}
}

func (h *HealthReporter) Report(ctx context.Context, name string, status models.VitalStatus, value float64, metadata map[string]string) {
	v := &models.Vital{
		Name:      name,
		Status:    status,
		Value:     value,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
	if err := h.vitals.Upsert(ctx, v); err != nil {
		h.log.Warn("vital upsert failed",
			logger.String("vital", name),
			logger.Error(err))
	}
}

// Snapshot returns every recorded vital plus the worst status among them.
// An empty vitals table reads as healthy: nothing has gone wrong yet.
func (h *HealthReporter) Snapshot(ctx context.Context) ([]*models.Vital, models.VitalStatus, error) {
	vitals, err := h.vitals.List(ctx)
	if err != nil {
		return nil, models.VitalCritical, err
	}
	overall := models.VitalHealthy
	for _, v := range vitals {
		switch v.Status {
		case models.VitalCritical:
			overall = models.VitalCritical
		case models.VitalDegraded:
			if overall == models.VitalHealthy {
				overall = models.VitalDegraded
			}
		}
	}
	return vitals, overall, nil
}

// AccuracyStatus maps a rolling direction accuracy onto a health level.
func AccuracyStatus(accuracy float64) models.VitalStatus {
	switch {
	case accuracy >= 0.55:
		return models.VitalHealthy
	case accuracy >= 0.45:
		return models.VitalDegraded
	default:
		return models.VitalCritical
	}
}
