package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
)

func TestSnapshotWorstOf(t *testing.T) {
	vitals := newFakeVitalsRepo()
	h := NewHealthReporter(vitals, testLogger())
	ctx := context.Background()

	h.Report(ctx, models.VitalMarketCollector, models.VitalHealthy, 1.0, nil)
	h.Report(ctx, models.VitalPredictionEngine, models.VitalDegraded, 0, nil)

	list, overall, err := h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, models.VitalDegraded, overall)

	h.Report(ctx, models.VitalSystemFitness, models.VitalCritical, 0.2, nil)
	_, overall, err = h.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.VitalCritical, overall)
}

func TestSnapshotEmptyIsHealthy(t *testing.T) {
	h := NewHealthReporter(newFakeVitalsRepo(), testLogger())

	list, overall, err := h.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, models.VitalHealthy, overall)
}

func TestAccuracyStatus(t *testing.T) {
	assert.Equal(t, models.VitalHealthy, AccuracyStatus(0.61))
	assert.Equal(t, models.VitalHealthy, AccuracyStatus(0.55))
	assert.Equal(t, models.VitalDegraded, AccuracyStatus(0.50))
	assert.Equal(t, models.VitalCritical, AccuracyStatus(0.30))
}
