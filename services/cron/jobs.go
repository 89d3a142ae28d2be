package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coursebridge/api/services"
)

// CleanupExpiredPlans removes transfer plans older than the retention
// window. Runs daily.
func (m *CronManager) CleanupExpiredPlans() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_plans"
	startedAt := time.Now()

	removed, err := m.plans.SweepExpired(ctx, services.PlanRetention)
	if err != nil {
		log.Printf("[CRON] Failed to sweep expired plans: %v", err)
		m.logJobError(jobName, startedAt, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired plans", removed), startedAt)
}
