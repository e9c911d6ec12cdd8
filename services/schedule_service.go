package services

import (
	"fmt"
	"time"

	"StaffBox/models"
	"StaffBox/repositories"
)

// ScheduleService owns the global backup settings and the scheduling
// math used by the automatic-backup trigger.
type ScheduleService struct {
	registry repositories.BackupRepository
}

func NewScheduleService(registry repositories.BackupRepository) *ScheduleService {
	return &ScheduleService{registry: registry}
}

func (s *ScheduleService) GetSettings() (*models.GlobalBackupSettings, error) {
	return s.registry.GetSettings()
}

// UpdateSettings validates and stores new settings, recomputing the
// next run from the last one.
func (s *ScheduleService) UpdateSettings(settings *models.GlobalBackupSettings) error {
	if settings.Hour < 0 || settings.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrMalformedDocument, settings.Hour)
	}
	if settings.Minute < 0 || settings.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrMalformedDocument, settings.Minute)
	}
	if settings.FrequencyHours < 1 {
		return fmt.Errorf("%w: frequency must be at least one hour", ErrMalformedDocument)
	}
	if settings.LastRunAt != nil {
		next := ComputeNextRun(settings, *settings.LastRunAt)
		settings.NextRunAt = &next
	}
	return s.registry.SaveSettings(settings)
}

// MarkRun records a completed automatic run and schedules the next
// one.
func (s *ScheduleService) MarkRun(now time.Time) error {
	settings, err := s.registry.GetSettings()
	if err != nil {
		return err
	}
	settings.LastRunAt = &now
	next := ComputeNextRun(settings, now)
	settings.NextRunAt = &next
	return s.registry.SaveSettings(settings)
}

// ComputeNextRun adds the configured frequency to the last run. Daily
// and coarser schedules anchor the result to the configured hour:minute
// of day; sub-daily frequencies keep the raw offset so the run time
// advances. The result is always strictly after lastRunAt.
func ComputeNextRun(settings *models.GlobalBackupSettings, lastRunAt time.Time) time.Time {
	freq := time.Duration(settings.FrequencyHours) * time.Hour
	next := lastRunAt.Add(freq)
	if settings.FrequencyHours%24 == 0 {
		next = time.Date(next.Year(), next.Month(), next.Day(),
			settings.Hour, settings.Minute, 0, 0, next.Location())
	}
	for !next.After(lastRunAt) {
		next = next.Add(freq)
	}
	return next
}

// IsDue reports whether an automatic backup should run now.
func IsDue(settings *models.GlobalBackupSettings, now time.Time) bool {
	if settings == nil || !settings.AutoBackupEnabled {
		return false
	}
	if settings.NextRunAt == nil {
		// Never ran: due once the anchored time of day has passed.
		anchor := time.Date(now.Year(), now.Month(), now.Day(),
			settings.Hour, settings.Minute, 0, 0, now.Location())
		return !now.Before(anchor)
	}
	return !now.Before(*settings.NextRunAt)
}
