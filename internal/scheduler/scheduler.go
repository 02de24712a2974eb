package scheduler

import (
	"fmt"
	"log"
	"time"

	"advisory-portal/internal/config"
	"advisory-portal/internal/notify"
	"advisory-portal/internal/rera"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler runs the nightly registry auto-sync and the daily lead
// nurturing cycle
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	verifier  *rera.Verifier
	nurture   *notify.Engine
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(db *gorm.DB, verifier *rera.Verifier, nurture *notify.Engine, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		db:       db,
		verifier: verifier,
		nurture:  nurture,
		config:   cfg,
	}
}

// Start registers the enabled jobs and starts the cron loop
func (s *Scheduler) Start() error {
	registered := 0

	if s.config.Rera.AutoSyncEnabled {
		cronSpec := s.parseDailyRunTime(s.config.Rera.AutoSyncTime)
		_, err := s.cron.AddFunc(cronSpec, func() {
			log.Println("Scheduler: Starting registry auto-sync...")
			if err := s.runAutoSync(); err != nil {
				log.Printf("Scheduler: Auto-sync failed: %v", err)
			} else {
				log.Println("Scheduler: Auto-sync completed successfully")
			}
		})
		if err != nil {
			return err
		}
		registered++
		log.Printf("Scheduler: Registry auto-sync at %s (cron: %s)", s.config.Rera.AutoSyncTime, cronSpec)
	} else {
		log.Println("Scheduler: Registry auto-sync is disabled in configuration")
	}

	if s.config.Nurture.Enabled {
		cronSpec := s.parseDailyRunTime(s.config.Nurture.DailyRunTime)
		_, err := s.cron.AddFunc(cronSpec, func() {
			log.Println("Scheduler: Starting nurture cycle...")
			if _, err := s.nurture.RunCycle(time.Now()); err != nil {
				log.Printf("Scheduler: Nurture cycle failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		registered++
		log.Printf("Scheduler: Nurture cycle at %s (cron: %s)", s.config.Nurture.DailyRunTime, cronSpec)
	} else {
		log.Println("Scheduler: Nurture cycle is disabled in configuration")
	}

	if registered == 0 {
		return nil
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with %d scheduled jobs", registered)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// runAutoSync sweeps for stale registry records and enqueues them
func (s *Scheduler) runAutoSync() error {
	enqueued, err := s.verifier.AutoSync()
	if err != nil {
		return err
	}
	log.Printf("Scheduler: Auto-sync enqueued %d records for verification", enqueued)
	return nil
}

// RunNow immediately executes the auto-sync sweep (for manual trigger)
func (s *Scheduler) RunNow() error {
	log.Println("Scheduler: Manual trigger - starting auto-sync...")
	return s.runAutoSync()
}

// RunNurtureNow immediately executes the nurture cycle (for manual trigger)
func (s *Scheduler) RunNurtureNow() (*notify.CycleResult, error) {
	log.Println("Scheduler: Manual trigger - starting nurture cycle...")
	return s.nurture.RunCycle(time.Now())
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:30" -> "30 2 * * *" (run at 2:30 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 2:30 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 02:30", timeStr)
	return "30 2 * * *"
}
