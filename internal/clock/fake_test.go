package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	fired := 0
	c.AfterFunc(3*time.Second, func() { fired++ })

	c.Advance(2 * time.Second)
	require.Equal(t, 0, fired)
	require.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	require.Equal(t, 1, fired)
	require.Equal(t, 0, c.Pending())

	c.Advance(time.Hour)
	require.Equal(t, 1, fired, "one-shot timers fire once")
}

func TestFakeStop(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	c.Advance(2 * time.Second)
	require.False(t, fired)
}

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	var order []string
	c.AfterFunc(2*time.Second, func() { order = append(order, "late") })
	c.AfterFunc(time.Second, func() { order = append(order, "early") })

	c.Advance(5 * time.Second)
	require.Equal(t, []string{"early", "late"}, order)
	require.Equal(t, time.Unix(5, 0), c.Now())
}

func TestNilTimerStop(t *testing.T) {
	var timer *Timer
	require.False(t, timer.Stop())
}
