package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Exporter is satisfied by services.SnapshotService.
type Exporter interface {
	Export(ctx context.Context) (string, error)
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler returns a cron scheduler that skips a run while the previous
// one is still going and recovers job panics.
func NewScheduler(log *zap.Logger) *cron.Cron {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log: log.Named("cron").Sugar()}
	return cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// RegisterSnapshotExport schedules exp on a cron schedule ("@every 15m", "0 * * * *").
// Each run gets its own timeout.
func RegisterSnapshotExport(c *cron.Cron, schedule string, exp Exporter, timeout time.Duration, log *zap.Logger) (cron.EntryID, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := exp.Export(ctx); err != nil {
			log.Error("scheduled snapshot export failed", zap.Error(err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}
	return id, nil
}
