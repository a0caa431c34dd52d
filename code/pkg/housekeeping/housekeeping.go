// housekeeping runs the nightly maintenance job.
package housekeeping

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// RunHour is the hour of the day, in the club's time zone, when the job
// runs.
const RunHour = 3

// Job is the work done each night, for example pruning stale pending
// members.
type Job func(ctx context.Context) error

// timeToNextRun uses the given start time to work out the duration to wait
// before the next run.  In production the given time should be the current
// time.  In test any time can be supplied.
func timeToNextRun(startTime time.Time) time.Duration {
	// The next run is at RunHour today.  If that has already passed, it's at
	// RunHour tomorrow.  time.Date takes care of daylight saving changes.
	runTime := time.Date(startTime.Year(), startTime.Month(), startTime.Day(), RunHour, 0, 0, 0, startTime.Location())
	if !runTime.After(startTime) {
		runTime = time.Date(startTime.Year(), startTime.Month(), startTime.Day()+1, RunHour, 0, 0, 0, startTime.Location())
	}

	return runTime.Sub(startTime)
}

// RunDaily runs the job at RunHour in the given location every day until
// the context is cancelled.  A nil location means local time.  An error
// from the job is logged and the job is run again the next night.  It's
// intended that it runs as a goroutine.
func RunDaily(ctx context.Context, clock clockwork.Clock, loc *time.Location, logger *slog.Logger, job Job) {

	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	for {
		wait := timeToNextRun(clock.Now().In(loc))
		timer := clock.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case <-timer.Chan():
			logger.Info("housekeeping: starting")
			err := job(ctx)
			if err != nil {
				logger.Error("housekeeping: " + err.Error())
				continue
			}
			logger.Info("housekeeping: done")
		}
	}
}
