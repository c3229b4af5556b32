package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobFunc func(ctx context.Context) (*Report, error)

func (f jobFunc) Run(ctx context.Context) (*Report, error) {
	return f(ctx)
}

func TestNewCronRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewCron("not a schedule", jobFunc(func(context.Context) (*Report, error) { return &Report{}, nil }), 0, silentLogger())
	require.Error(t, err)
}

func TestNewCronComputesNextRun(t *testing.T) {
	t.Parallel()

	c, err := NewCron(DefaultSchedule, jobFunc(func(context.Context) (*Report, error) { return &Report{}, nil }), time.Minute, silentLogger())
	require.NoError(t, err)

	c.Start()
	defer func() { require.NoError(t, c.Stop(context.Background())) }()

	next := c.Next()
	require.False(t, next.IsZero())
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestCronFireAppliesTimeout(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	c, err := NewCron(DefaultSchedule, jobFunc(func(ctx context.Context) (*Report, error) {
		deadline, _ = ctx.Deadline()
		return &Report{}, nil
	}), time.Minute, silentLogger())
	require.NoError(t, err)

	c.fire()
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
