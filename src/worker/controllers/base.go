package controllers

import (
	"sync"
	"time"

	"inventory/src/config"
	"inventory/src/scheduler"
	"inventory/src/services"

	"github.com/sirupsen/logrus"
)

type Controller struct {
	Assets          services.AssetServiceI
	WarrantyHorizon time.Duration
	Logger          *logrus.Logger

	jobs           map[string]Job
	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
}

func NewController(cfg *config.Config, assets services.AssetServiceI, logger *logrus.Logger) *Controller {
	days := cfg.Worker.WarrantyHorizonDays
	if days <= 0 {
		days = 30
	}
	c := &Controller{
		Assets:          assets,
		WarrantyHorizon: time.Duration(days) * 24 * time.Hour,
		Logger:          logger,
		Schedulers:      map[string]*scheduler.ScheduledTask{},
	}
	c.jobs = map[string]Job{
		JobWarrantyScan:  {Name: JobWarrantyScan, CronSpec: cfg.Worker.WarrantyScanCron, Run: c.ScanWarranties},
		JobStatsSnapshot: {Name: JobStatsSnapshot, CronSpec: cfg.Worker.StatsCron, Run: c.SnapshotStats},
	}
	return c
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	out := make(map[string]*scheduler.ScheduledTask, len(c.Schedulers))
	for name, task := range c.Schedulers {
		out[name] = task
	}
	return out
}
