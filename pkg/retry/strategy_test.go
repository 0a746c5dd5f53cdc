package retry

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/sol-vault/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	strategy := Limit(3)

	assert.True(t, strategy(1, errors.New("stale")))
	assert.True(t, strategy(2, errors.New("stale")))
	assert.False(t, strategy(3, errors.New("stale")))
}

func TestErrorFilters(t *testing.T) {
	errStale := errors.New("stale version")
	errConflict := errors.New("conflict")
	errOther := errors.New("other")

	retriable := RetriableErrors(errStale, errConflict)
	nonRetriable := NonRetriableErrors(errStale, errConflict)

	for _, err := range []error{errStale, errConflict, errors.Wrap(errStale, "commit")} {
		assert.True(t, retriable(1, err), err)
		assert.False(t, nonRetriable(1, err), err)
	}

	assert.False(t, retriable(1, errOther))
	assert.True(t, nonRetriable(1, errOther))
}

func TestBackoff(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	defer func() { sleeperImpl = &realSleeper{} }()

	strategy := Backoff(backoff.BinaryExponential(10*time.Millisecond), 50*time.Millisecond)
	for attempt := uint(1); attempt <= 5; attempt++ {
		assert.True(t, strategy(attempt, errors.New("stale")))
	}

	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
		50 * time.Millisecond,
	}, ts.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	defer func() { sleeperImpl = &realSleeper{} }()

	const iterations = 10000
	delay := time.Millisecond

	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)
	for i := 0; i < iterations; i++ {
		assert.True(t, strategy(1, errors.New("stale")))
	}

	for _, d := range ts.sleepTimes {
		assert.InDelta(t, float64(delay), float64(d), 0.1*float64(delay)+1)
	}

	// Mean stays on the delay
	assert.InDelta(t, float64(delay), float64(ts.Mean()), 0.01*float64(delay))

	// Uniform jitter of +/-10% has a mean absolute deviation of 5%
	assert.InDelta(t, 0.05*float64(delay), float64(ts.AbsDeviation()), 0.005*float64(delay))
}

func TestCapDelay(t *testing.T) {
	assert.Equal(t, 5*time.Millisecond, capDelay(5*time.Millisecond, time.Second))
	assert.Equal(t, time.Second, capDelay(time.Minute, time.Second))
}

// testSleeper records requested sleeps instead of blocking
type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(d time.Duration) {
	t.sleepTimes = append(t.sleepTimes, d)
}

func (t *testSleeper) Total() (total time.Duration) {
	for _, d := range t.sleepTimes {
		total += d
	}
	return total
}

func (t *testSleeper) Mean() time.Duration {
	return time.Duration(int(t.Total()) / len(t.sleepTimes))
}

func (t *testSleeper) AbsDeviation() (dev time.Duration) {
	mean := t.Mean()
	for _, d := range t.sleepTimes {
		dev += time.Duration(math.Abs(float64(d) - float64(mean)))
	}
	return time.Duration(int(dev) / len(t.sleepTimes))
}
