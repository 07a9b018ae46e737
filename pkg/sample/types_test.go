package sample

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrialResult(t *testing.T) {
	ok := NewTrialResult(1500*time.Microsecond, nil)
	assert.Equal(t, int64(1500000), ok.DurationNanos)
	assert.True(t, ok.Succeeded)
	assert.Empty(t, ok.Err)

	bad := NewTrialResult(42, errors.New("503 Service Unavailable"))
	assert.Equal(t, int64(42), bad.DurationNanos)
	assert.False(t, bad.Succeeded)
	assert.Equal(t, "503 Service Unavailable", bad.Err)

	assert.Zero(t, NewTrialResult(-5, nil).DurationNanos)
}

func TestDurationsPolicy(t *testing.T) {
	set := SampleSet{
		{DurationNanos: 30, Succeeded: true},
		{DurationNanos: 10, Succeeded: false},
		{DurationNanos: 20, Succeeded: true},
	}
	assert.Equal(t, []int64{30, 10, 20}, set.Durations(IncludeFailures))
	assert.Equal(t, []int64{30, 20}, set.Durations(ExcludeFailures))
	assert.Equal(t, 1, set.Failures())
	// Execution order is untouched.
	assert.Equal(t, int64(30), set[0].DurationNanos)
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, IncludeFailures, p)

	p, err = ParseFailurePolicy("exclude")
	require.NoError(t, err)
	assert.Equal(t, ExcludeFailures, p)

	_, err = ParseFailurePolicy("drop")
	require.Error(t, err)
}
