package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on every tick until ctx is
// canceled. Task errors are logged and the schedule holds; a failing
// run never takes the loop down.
func Every(ctx context.Context, interval time.Duration, name string, log logrus.FieldLogger, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		if err := task(ctx); err != nil {
			log.WithField("task", name).WithError(err).Error("scheduled task failed")
		}
	}
	run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
