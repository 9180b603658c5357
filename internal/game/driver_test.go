package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct {
	calls []string
	dts   []float32
}

func (r *recorder) Poll() int {
	r.calls = append(r.calls, "poll")
	return 0
}

func (r *recorder) Update(dt float32) {
	r.calls = append(r.calls, "update")
	r.dts = append(r.dts, dt)
}

func (r *recorder) render() {
	r.calls = append(r.calls, "render")
}

func TestDriverFirstTickStartsWithZeroDelta(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	rec := &recorder{}
	d := NewDriver(clock.Now, rec, rec, rec.render)

	assert.Equal(t, StateIdle, d.State())
	dt := d.Tick()
	assert.Equal(t, float32(0), dt)
	assert.Equal(t, StateRunning, d.State())

	clock.Advance(16 * time.Millisecond)
	dt = d.Tick()
	assert.InDelta(t, 0.016, dt, 1e-6)
	assert.Equal(t, []float32{0, dt}, rec.dts)
}

func TestDriverOrderAndSingleRender(t *testing.T) {
	clock := &manualClock{now: time.Unix(0, 0)}
	rec := &recorder{}
	d := NewDriver(clock.Now, rec, rec, rec.render)

	for range 3 {
		clock.Advance(10 * time.Millisecond)
		d.Tick()
	}
	assert.Equal(t, []string{
		"poll", "update", "render",
		"poll", "update", "render",
		"poll", "update", "render",
	}, rec.calls)
	assert.Equal(t, uint64(3), d.Frames())
}

func TestDriverIgnoresNestedTick(t *testing.T) {
	clock := &manualClock{now: time.Unix(0, 0)}
	rec := &recorder{}
	var d *Driver
	renders := 0
	d = NewDriver(clock.Now, rec, rec, func() {
		renders++
		assert.Equal(t, float32(0), d.Tick())
	})

	d.Tick()
	d.Tick()
	assert.Equal(t, 2, renders)
	assert.Equal(t, uint64(2), d.Frames())
}

func TestDriverDefaultsToWallClock(t *testing.T) {
	d := NewDriver(nil, nil, nil, nil)
	d.Tick()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, d.Tick(), float32(0))
}
