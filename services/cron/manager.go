package cron

import (
	"log"
	"time"

	"github.com/coursebridge/api/model"
	"github.com/coursebridge/api/services"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	plans *services.PlanService
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:  c,
		db:    db,
		plans: services.NewPlanService(db),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Daily at 2 AM: retire plans past the retention window. This backs up
	// the opportunistic sweep that runs on catalog reads, so old plans go
	// away even on an idle instance.
	_, err := m.cron.AddFunc("0 0 2 * * *", func() {
		m.logJobStart("cleanup_expired_plans")
		m.CleanupExpiredPlans()
	})
	if err != nil {
		return err
	}

	return nil
}

// logJobStart records the start of a job run
func (m *CronManager) logJobStart(jobName string) {
	entry := model.JobRun{
		JobName:   jobName,
		Status:    "started",
		StartedAt: time.Now(),
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to log start of job %s: %v", jobName, err)
	}
}

// logJobComplete records a successful job run
func (m *CronManager) logJobComplete(jobName, message string, startedAt time.Time) {
	now := time.Now()
	entry := model.JobRun{
		JobName:     jobName,
		Status:      "completed",
		StartedAt:   startedAt,
		CompletedAt: &now,
		Duration:    int(now.Sub(startedAt).Milliseconds()),
		Message:     message,
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to log completion of job %s: %v", jobName, err)
	}
}

// logJobError records a failed job run
func (m *CronManager) logJobError(jobName string, startedAt time.Time, jobErr error) {
	now := time.Now()
	entry := model.JobRun{
		JobName:     jobName,
		Status:      "failed",
		StartedAt:   startedAt,
		CompletedAt: &now,
		Duration:    int(now.Sub(startedAt).Milliseconds()),
		ErrorMsg:    jobErr.Error(),
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to log failure of job %s: %v", jobName, err)
	}
}
