package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

const (
	defaultPollInitial = 2 * time.Second
	defaultPollCap     = 15 * time.Second
	defaultPollTimeout = 5 * time.Minute
)

type PollOption func(*pollConfig)

type pollConfig struct {
	initial time.Duration
	cap     time.Duration
	timeout time.Duration
}

func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) { c.initial = d }
}

func WithPollCap(d time.Duration) PollOption {
	return func(c *pollConfig) { c.cap = d }
}

// WithPollTimeout applies only when ctx has no deadline of its own.
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) { c.timeout = d }
}

// ErrJobFailed is wrapped into the error Poll returns for a failed job.
var ErrJobFailed = eris.New("extraction job failed")

// Poll calls GetJob until the job completes or fails, or ctx expires.
// The interval doubles from 2s up to a 15s cap.
func Poll(ctx context.Context, client Client, jobID uuid.UUID, opts ...PollOption) (*Job, error) {
	cfg := pollConfig{initial: defaultPollInitial, cap: defaultPollCap, timeout: defaultPollTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	interval := cfg.initial
	for {
		job, err := client.GetJob(ctx, jobID)
		if err != nil {
			return nil, eris.Wrapf(err, "gateway: poll job %s", jobID)
		}
		switch job.Status {
		case JobCompleted:
			return job, nil
		case JobFailed:
			return job, eris.Wrapf(ErrJobFailed, "job %s: %s", jobID, job.Error)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return job, eris.Wrapf(ctx.Err(), "gateway: poll job %s timed out", jobID)
		case <-timer.C:
		}

		interval *= 2
		if interval > cfg.cap {
			interval = cfg.cap
		}
	}
}
