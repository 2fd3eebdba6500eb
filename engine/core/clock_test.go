package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	elapsed := c.Elapsed()
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)

	c.Stop()
	time.Sleep(2 * time.Millisecond)
	c.Update()
	assert.Equal(t, elapsed, c.Elapsed())
}
