package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClockAfterFiresOnAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	ch := c.After(2 * time.Second)
	require.Equal(t, 1, c.Waiters())

	c.Advance(time.Second)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	c.Advance(time.Second)
	select {
	case fired := <-ch:
		assert.Equal(t, start.Add(2*time.Second), fired)
	default:
		t.Fatal("expected channel to fire")
	}
	assert.Equal(t, 0, c.Waiters())
}

func TestDateOfTruncatesToUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2026, 3, 1, 1, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), DateOf(in))
}
