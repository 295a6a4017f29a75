package controllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"inventory/src/metrics"
	"inventory/src/models"
	"inventory/src/scheduler"
	"inventory/src/utils"

	"github.com/sirupsen/logrus"
)

const (
	JobWarrantyScan  = "warranty-scan"
	JobStatsSnapshot = "stats-snapshot"

	jobTimeout = 2 * time.Minute
)

var ErrUnknownJob = errors.New("unknown job")

// Job is a named periodic task. Run returns a short summary for the logs and
// for manual triggers.
type Job struct {
	Name     string
	CronSpec string
	Run      func(ctx context.Context) (map[string]any, error)
}

type JobStatus struct {
	Name     string     `json:"name"`
	CronSpec string     `json:"cron"`
	NextRun  *time.Time `json:"next_run"`
}

// LoadAllJobs schedules every job that has a cron spec. Jobs with an empty
// spec are left for manual triggers only.
func (c *Controller) LoadAllJobs() error {
	for _, name := range c.jobNames() {
		job := c.jobs[name]
		if job.CronSpec == "" {
			continue
		}
		if err := c.ScheduleJob(job); err != nil {
			return fmt.Errorf("schedule %s: %w", name, err)
		}
	}
	return nil
}

// ScheduleJob handles the scheduling and re-scheduling of a job.
func (c *Controller) ScheduleJob(job Job) error {
	c.SchedulerMutex.Lock()
	if existing, exists := c.Schedulers[job.Name]; exists {
		existing.Cancel()
		delete(c.Schedulers, job.Name)
	}
	c.SchedulerMutex.Unlock()

	task, err := scheduler.NewScheduledTask(job.CronSpec, c.Logger, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_, _ = c.runJob(ctx, job)
	})
	if err != nil {
		return err
	}

	c.SchedulerMutex.Lock()
	c.Schedulers[job.Name] = task
	c.SchedulerMutex.Unlock()
	return nil
}

// RunJob runs a job immediately, outside of its schedule.
func (c *Controller) RunJob(ctx context.Context, name string) (map[string]any, error) {
	job, ok := c.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return c.runJob(ctx, job)
}

func (c *Controller) runJob(ctx context.Context, job Job) (map[string]any, error) {
	logger := c.Logger.WithField("job", job.Name)
	ctx = utils.WithLogger(ctx, logger)

	start := time.Now()
	summary, err := job.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("job failed")
		return nil, err
	}
	logger.WithFields(logrus.Fields(summary)).WithField("took", time.Since(start).String()).Info("job finished")
	return summary, nil
}

func (c *Controller) Jobs() []JobStatus {
	schedulers := c.GetSchedulers()
	out := make([]JobStatus, 0, len(c.jobs))
	for _, name := range c.jobNames() {
		status := JobStatus{Name: name, CronSpec: c.jobs[name].CronSpec}
		if task, ok := schedulers[name]; ok {
			next := task.Next()
			status.NextRun = &next
		}
		out = append(out, status)
	}
	return out
}

// StopAll cancels every scheduled job.
func (c *Controller) StopAll() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	for name, task := range c.Schedulers {
		task.Cancel()
		delete(c.Schedulers, name)
	}
}

func (c *Controller) jobNames() []string {
	names := make([]string, 0, len(c.jobs))
	for name := range c.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScanWarranties counts non-retired assets whose warranty ends within the
// horizon and logs each of them.
func (c *Controller) ScanWarranties(ctx context.Context) (map[string]any, error) {
	assets, err := c.Assets.ExpiringWarranties(ctx, c.WarrantyHorizon)
	if err != nil {
		return nil, err
	}
	metrics.WarrantyExpiring.Set(float64(len(assets)))

	logger := utils.LoggerFromContext(ctx)
	for _, a := range assets {
		entry := logger.WithField("asset_id", a.ID).WithField("label", a.Label)
		if a.WarrantyEnd != nil {
			entry = entry.WithField("warranty_end", a.WarrantyEnd.Format("2006-01-02"))
		}
		entry.Warn("warranty expiring")
	}
	return map[string]any{"expiring": len(assets), "horizon_days": int(c.WarrantyHorizon.Hours() / 24)}, nil
}

// SnapshotStats publishes the per-status asset counts as gauges.
func (c *Controller) SnapshotStats(ctx context.Context) (map[string]any, error) {
	stats, err := c.Assets.Stats(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range models.AssetStatuses {
		if status == models.AssetStatusRetired {
			continue
		}
		metrics.AssetsByStatus.WithLabelValues(string(status)).Set(float64(stats.ByStatus[status]))
	}
	return map[string]any{"total": stats.Total}, nil
}
