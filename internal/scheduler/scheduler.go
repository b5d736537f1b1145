package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/histweather/histweather/internal/session"
)

// Scheduler periodically purges expired search sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  *session.Store
	interval  time.Duration
}

// New creates a new Scheduler.
func New(sessions *session.Store, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sessions:  sessions,
		interval:  interval,
	}
}

// Start schedules the purge job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(func() {
		if removed := s.sessions.PurgeExpired(); removed > 0 {
			log.Printf("scheduler: purged %d expired search sessions", removed)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
