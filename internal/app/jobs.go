package app

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// Job is a periodic background task. It first runs after Delay (Interval
// when zero) and then every Interval until the context is canceled.
type Job struct {
	Name     string
	Interval time.Duration
	Delay    time.Duration
	Run      func(ctx context.Context) error
}

// Jobs returns the background jobs of a long-running process: day rollover,
// autosave and the rolling auto-backup. The tracker delivers its own ticks.
func (a *App) Jobs() []Job {
	iv := a.cfg.Intervals
	// an overdue snapshot runs right away
	backupDelay := max(a.gateway.NextAutoBackupIn(iv.AutoBackup), time.Millisecond)

	return []Job{
		{
			Name:     "rollover",
			Interval: iv.Rollover,
			Run: func(context.Context) error {
				if res := a.Rollover(); res.Rolled {
					a.logger.Info("day rolled over", "from", res.From, "to", res.To, "forced_end", res.ForcedEnd)
				}
				return nil
			},
		},
		{
			Name:     "autosave",
			Interval: iv.AutoSave,
			Run: func(context.Context) error {
				a.Save()
				return nil
			},
		},
		{
			Name:     "autobackup",
			Interval: iv.AutoBackup,
			Delay:    backupDelay,
			Run: func(context.Context) error {
				if _, err := a.AutoBackup(); err != nil {
					a.logger.Warn("auto-backup failed", "error", err)
				}
				return nil
			},
		},
	}
}

// RunJobs runs every job until ctx is canceled or a job returns an error.
// Cancellation is not reported as an error.
func RunJobs(ctx context.Context, logger hclog.Logger, jobs ...Job) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		if job.Interval <= 0 {
			logger.Debug("job disabled", "job", job.Name)
			continue
		}
		job := job
		g.Go(func() error {
			return runJob(ctx, logger.Named(job.Name), job)
		})
	}
	return g.Wait()
}

func runJob(ctx context.Context, logger hclog.Logger, job Job) error {
	delay := job.Delay
	if delay <= 0 {
		delay = job.Interval
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if err := job.Run(ctx); err != nil {
				logger.Error("job failed", "error", err)
				return err
			}
			timer.Reset(job.Interval)
		}
	}
}
