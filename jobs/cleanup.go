package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"timeclock/repository"
	"timeclock/storage"
	"timeclock/utils"
)

// DefaultImageRetentionDays applies to the cron sweep when no retention is configured.
const DefaultImageRetentionDays = 30

// Cleaner removes aged timesheet rows, daily shifts and stored images. The
// admin endpoints, the cron endpoint and the daily schedule all share it.
type Cleaner struct {
	timesheets repository.TimesheetRepository
	shifts     repository.ShiftRepository
	images     storage.ImageStore
	loc        *time.Location
	now        func() time.Time
}

// NewCleaner accepts a nil image store; image sweeps then fail with
// storage.ErrNotConfigured.
func NewCleaner(store *repository.Store, images storage.ImageStore, loc *time.Location) *Cleaner {
	if loc == nil {
		loc = time.UTC
	}
	return &Cleaner{
		timesheets: store.Timesheets,
		shifts:     store.Shifts,
		images:     images,
		loc:        loc,
		now:        time.Now,
	}
}

// CleanTimesheets deletes punches and daily shifts dated before beforeISO
// (YYYY-MM-DD) and returns the number of punches removed.
func (c *Cleaner) CleanTimesheets(ctx context.Context, beforeISO string) (int64, error) {
	if _, err := utils.ParseISODate(beforeISO); err != nil {
		return 0, err
	}

	deleted, err := c.timesheets.DeleteBefore(ctx, beforeISO)
	if err != nil {
		return 0, fmt.Errorf("delete timesheets: %w", err)
	}
	shifts, err := c.shifts.DeleteBefore(ctx, beforeISO)
	if err != nil {
		return deleted, fmt.Errorf("delete daily shifts: %w", err)
	}

	log.Printf("Timesheet cleanup before %s: %d punches, %d daily shifts removed", beforeISO, deleted, shifts)
	return deleted, nil
}

// CleanImages deletes punch photos last modified before the start of
// beforeISO in the configured timezone. Portraits are never swept.
func (c *Cleaner) CleanImages(ctx context.Context, beforeISO string) (int, []string, error) {
	day, err := utils.ParseISODate(beforeISO)
	if err != nil {
		return 0, nil, err
	}
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, c.loc)
	return c.cleanImagesBefore(ctx, cutoff)
}

// CleanImagesOlderThan sweeps images older than the given number of days.
func (c *Cleaner) CleanImagesOlderThan(ctx context.Context, days int) (int, []string, error) {
	if days <= 0 {
		days = DefaultImageRetentionDays
	}
	return c.cleanImagesBefore(ctx, c.now().In(c.loc).AddDate(0, 0, -days))
}

func (c *Cleaner) cleanImagesBefore(ctx context.Context, cutoff time.Time) (int, []string, error) {
	if c.images == nil {
		return 0, nil, storage.ErrNotConfigured
	}
	deleted, failures, err := c.images.DeleteOlderThan(ctx, storage.PunchFolder, cutoff)
	if err != nil {
		return deleted, failures, fmt.Errorf("sweep images: %w", err)
	}
	log.Printf("Image cleanup before %s: %d removed, %d failed", cutoff.Format(time.RFC3339), deleted, len(failures))
	return deleted, failures, nil
}

// CutoffISO returns the YYYY-MM-DD date `days` days before today.
func (c *Cleaner) CutoffISO(days int) string {
	return c.now().In(c.loc).AddDate(0, 0, -days).Format(utils.ISODateLayout)
}

// RunRetention applies the configured retention windows. A window of zero
// days disables that half of the sweep.
func (c *Cleaner) RunRetention(timesheetDays, imageDays int) {
	log.Println("Starting scheduled cleanup")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if timesheetDays > 0 {
		if _, err := c.CleanTimesheets(ctx, c.CutoffISO(timesheetDays)); err != nil {
			log.Printf("Scheduled timesheet cleanup failed: %v", err)
		}
	}
	if imageDays > 0 && c.images != nil {
		if _, _, err := c.CleanImagesOlderThan(ctx, imageDays); err != nil {
			log.Printf("Scheduled image cleanup failed: %v", err)
		}
	}

	log.Println("Scheduled cleanup completed")
}

// Schedule registers the daily retention run at the given HH:mm and starts
// the scheduler in the background.
func Schedule(c *Cleaner, at string, timesheetDays, imageDays int) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(c.loc)
	_, err := s.Every(1).Day().At(at).Do(c.RunRetention, timesheetDays, imageDays)
	if err != nil {
		return nil, fmt.Errorf("schedule cleanup at %q: %w", at, err)
	}
	s.StartAsync()
	return s, nil
}
