package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)

	c := NewFixed(at)

	assert.True(t, c.Now().Equal(at))
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.Equal(t, c.Now(), c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	now := NewSystem().Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
