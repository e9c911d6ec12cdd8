package jobs

import (
	"context"
	"sync"
	"time"

	"StaffBox/models"
	"StaffBox/services"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Poll more frequently than the schedule granularity so runs trigger
// near the expected minute boundary.
const defaultPollInterval = 30 * time.Second

// BackupScheduler periodically checks the global settings and runs an
// automatic system capture when one is due. An optional cron
// expression overrides the hour/minute/frequency settings.
type BackupScheduler struct {
	schedule     *services.ScheduleService
	backups      *services.BackupService
	delivery     *services.DeliveryService
	cronSchedule cron.Schedule
	pollInterval time.Duration
	once         sync.Once
	wg           sync.WaitGroup
}

func NewBackupScheduler(schedule *services.ScheduleService, backups *services.BackupService,
	delivery *services.DeliveryService, cronExpr string) *BackupScheduler {

	s := &BackupScheduler{
		schedule:     schedule,
		backups:      backups,
		delivery:     delivery,
		pollInterval: defaultPollInterval,
	}
	if cronExpr != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		sched, err := parser.Parse(cronExpr)
		if err != nil {
			logrus.Fatalf("Invalid BACKUP_CRON expression %q: %v", cronExpr, err)
		}
		s.cronSchedule = sched
	}
	return s
}

// Start launches the scheduler loop. It stops when the context is
// cancelled.
func (s *BackupScheduler) Start(ctx context.Context) {
	s.once.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runLoop(ctx)
		}()
	})
}

// Wait blocks until the loop has exited.
func (s *BackupScheduler) Wait() {
	s.wg.Wait()
}

func (s *BackupScheduler) runLoop(ctx context.Context) {
	s.runIfDue(ctx, time.Now())
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.runIfDue(ctx, now)
		}
	}
}

func (s *BackupScheduler) runIfDue(ctx context.Context, now time.Time) {
	settings, err := s.schedule.GetSettings()
	if err != nil {
		logrus.Error("Scheduler could not load settings: ", err)
		return
	}
	if !s.isDue(settings, now) {
		return
	}

	logrus.Info("Automatic backup is due, starting system capture")
	record, report, err := s.backups.CaptureSystem(ctx, "scheduler", models.BackupTypeAutomatic)
	if err != nil {
		logrus.Error("Automatic backup failed: ", err)
		return
	}
	if err := s.schedule.MarkRun(now); err != nil {
		logrus.Error("Failed to record automatic run: ", err)
	}

	for _, tenant := range report.PerTenant {
		if len(tenant.Errors) > 0 {
			logrus.WithFields(logrus.Fields{
				"tenant": tenant.TenantID,
				"errors": tenant.Errors,
			}).Warn("Automatic backup captured tenant with table errors")
		}
	}

	if settings.AutoEmailEnabled {
		if err := s.delivery.Notify(ctx, record); err != nil {
			logrus.Error("Automatic backup delivery failed: ", err)
		}
	}
}

func (s *BackupScheduler) isDue(settings *models.GlobalBackupSettings, now time.Time) bool {
	if s.cronSchedule != nil {
		if !settings.AutoBackupEnabled {
			return false
		}
		last := now.Add(-s.pollInterval)
		if settings.LastRunAt != nil {
			last = *settings.LastRunAt
		}
		return !now.Before(s.cronSchedule.Next(last))
	}
	return services.IsDue(settings, now)
}
