package fetch

import (
	"context"
	"time"
)

// ScheduleAt schedules execution for a particular time and at intervals thereafter.
// If interval is 0, the function will be called only once.
// Cancel ctx to stop the schedule, the returned channel is closed once it has stopped.
func ScheduleAt(ctx context.Context, f func(), t time.Time, i time.Duration) <-chan struct{} {
	done := make(chan struct{})
	now := time.Now().UTC()

	// Check that t is not in the past, if it is increment it by interval until it is not
	for i > 0 && now.Sub(t) > 0 {
		t = t.Add(i)
	}

	timer := time.NewTimer(t.Sub(now))
	go func() {
		defer close(done)
		defer timer.Stop()

		select {
		case <-timer.C:
			go f()
		case <-ctx.Done():
			return
		}

		if i <= 0 {
			return
		}

		ticker := time.NewTicker(i)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				go f()
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}

// NextInterval returns the next time after now aligned to interval, for example
// the next half hour for an interval of 30 minutes
func NextInterval(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return now
	}
	return now.Truncate(interval).Add(interval)
}
