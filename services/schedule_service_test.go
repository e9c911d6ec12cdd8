package services

import (
	"testing"
	"time"

	"StaffBox/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNextRun(t *testing.T) {
	settings := &models.GlobalBackupSettings{Hour: 3, Minute: 0, FrequencyHours: 24}
	lastRun := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

	next := ComputeNextRun(settings, lastRun)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), next)
}

func TestComputeNextRunAnchorsToTimeOfDay(t *testing.T) {
	settings := &models.GlobalBackupSettings{Hour: 3, Minute: 30, FrequencyHours: 24}
	// The run actually fired late; the next one still anchors to 03:30.
	lastRun := time.Date(2024, 1, 1, 5, 17, 42, 0, time.UTC)

	next := ComputeNextRun(settings, lastRun)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 30, 0, 0, time.UTC), next)
}

func TestComputeNextRunSubDailyFrequency(t *testing.T) {
	settings := &models.GlobalBackupSettings{Hour: 3, Minute: 0, FrequencyHours: 12}
	lastRun := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

	// Sub-daily frequencies skip the time-of-day anchor: anchoring a
	// twelve-hour step back to 03:00 would never move past the last run.
	next := ComputeNextRun(settings, lastRun)
	assert.Equal(t, time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC), next)
}

func TestComputeNextRunAlwaysAdvances(t *testing.T) {
	lastRun := time.Date(2024, 1, 1, 3, 0, 30, 0, time.UTC)

	for _, freq := range []int{1, 6, 12, 24, 48} {
		settings := &models.GlobalBackupSettings{Hour: 3, Minute: 0, FrequencyHours: freq}
		next := ComputeNextRun(settings, lastRun)
		assert.True(t, next.After(lastRun),
			"frequency %dh: next run %v is not after %v", freq, next, lastRun)
	}
}

func TestMarkRunSubDailyFrequencyNotImmediatelyDue(t *testing.T) {
	registry := newFakeRegistry()
	service := NewScheduleService(registry)
	require.NoError(t, registry.SaveSettings(&models.GlobalBackupSettings{
		ID: 1, AutoBackupEnabled: true, Hour: 3, Minute: 0, FrequencyHours: 12,
	}))

	now := time.Date(2024, 1, 1, 3, 0, 30, 0, time.UTC)
	require.NoError(t, service.MarkRun(now))

	settings, err := registry.GetSettings()
	require.NoError(t, err)
	require.NotNil(t, settings.NextRunAt)
	assert.True(t, settings.NextRunAt.After(now),
		"next run %v must be after the run that just finished", *settings.NextRunAt)

	// The poll loop must not re-fire on its next tick.
	assert.False(t, IsDue(settings, now.Add(30*time.Second)))
	assert.True(t, IsDue(settings, now.Add(12*time.Hour)))
}

func TestIsDue(t *testing.T) {
	now := time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, IsDue(nil, now))
	assert.False(t, IsDue(&models.GlobalBackupSettings{AutoBackupEnabled: false, NextRunAt: &past}, now))
	assert.True(t, IsDue(&models.GlobalBackupSettings{AutoBackupEnabled: true, NextRunAt: &past}, now))
	assert.False(t, IsDue(&models.GlobalBackupSettings{AutoBackupEnabled: true, NextRunAt: &future}, now))

	// Never ran: due once the anchored time of day has passed.
	assert.True(t, IsDue(&models.GlobalBackupSettings{AutoBackupEnabled: true, Hour: 3}, now))
	assert.False(t, IsDue(&models.GlobalBackupSettings{AutoBackupEnabled: true, Hour: 5}, now))
}

func TestUpdateSettingsValidation(t *testing.T) {
	service := NewScheduleService(newFakeRegistry())

	assert.Error(t, service.UpdateSettings(&models.GlobalBackupSettings{Hour: 24, FrequencyHours: 24}))
	assert.Error(t, service.UpdateSettings(&models.GlobalBackupSettings{Minute: 60, FrequencyHours: 24}))
	assert.Error(t, service.UpdateSettings(&models.GlobalBackupSettings{Hour: 3, FrequencyHours: 0}))
	assert.NoError(t, service.UpdateSettings(&models.GlobalBackupSettings{Hour: 3, FrequencyHours: 24}))
}

func TestUpdateSettingsRecomputesNextRun(t *testing.T) {
	service := NewScheduleService(newFakeRegistry())
	lastRun := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

	settings := &models.GlobalBackupSettings{
		AutoBackupEnabled: true, Hour: 3, Minute: 0, FrequencyHours: 24, LastRunAt: &lastRun,
	}
	require.NoError(t, service.UpdateSettings(settings))
	require.NotNil(t, settings.NextRunAt)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), *settings.NextRunAt)
}

func TestMarkRun(t *testing.T) {
	registry := newFakeRegistry()
	service := NewScheduleService(registry)
	now := time.Date(2024, 1, 5, 3, 0, 30, 0, time.UTC)

	require.NoError(t, service.MarkRun(now))

	settings, err := registry.GetSettings()
	require.NoError(t, err)
	require.NotNil(t, settings.LastRunAt)
	require.NotNil(t, settings.NextRunAt)
	assert.Equal(t, now, *settings.LastRunAt)
	assert.Equal(t, time.Date(2024, 1, 6, 3, 0, 0, 0, time.UTC), *settings.NextRunAt)
}
