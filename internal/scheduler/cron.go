package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule fires once a day at 06:00 server time.
const DefaultSchedule = "0 6 * * *"

const defaultRunTimeout = 30 * time.Minute

// Job is the work a cron entry performs.
type Job interface {
	Run(ctx context.Context) (*Report, error)
}

// Cron runs a Job on a standard five-field schedule.
type Cron struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	logger  *logrus.Logger
	entryID cron.EntryID
}

// NewCron registers job under schedule. Overlapping firings are skipped.
func NewCron(schedule string, job Job, timeout time.Duration, logger *logrus.Logger) (*Cron, error) {
	if job == nil {
		return nil, eris.New("cron job is required")
	}
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	c := &Cron{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger: logger}),
			cron.SkipIfStillRunning(cronLogger{logger: logger}),
		)),
		job:     job,
		timeout: timeout,
		logger:  logger,
	}

	id, err := c.cron.AddFunc(schedule, c.fire)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid cron schedule %q", schedule)
	}
	c.entryID = id

	return c, nil
}

// Start begins scheduling in the background.
func (c *Cron) Start() {
	c.cron.Start()
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "scheduler.cron",
			"next_run":  c.Next(),
		}).Info("daily cron started")
	}
}

// Stop halts scheduling and waits for a running job until ctx is done.
func (c *Cron) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "waiting for cron job to finish")
	}
}

// Next returns the next scheduled firing after now.
func (c *Cron) Next() time.Time {
	entry := c.cron.Entry(c.entryID)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(time.Now())
}

func (c *Cron) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	report, err := c.job.Run(ctx)
	if c.logger == nil {
		return
	}

	entry := c.logger.WithField("component", "scheduler.cron")
	if err != nil {
		entry.WithField("error", err.Error()).Error("scheduled daily automation failed")
		return
	}
	entry.WithField("runs", len(report.Results)).Info("scheduled daily automation finished")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.WithFields(kvFields(keysAndValues)).WithField("component", "scheduler.cron").Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.WithFields(kvFields(keysAndValues)).
		WithField("component", "scheduler.cron").
		WithField("error", err).
		Error(msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
