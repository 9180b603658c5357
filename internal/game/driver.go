package game

import (
	"log/slog"
	"time"
)

type DriverState int

const (
	StateIdle DriverState = iota
	StateRunning
)

func (s DriverState) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// Poller delivers finished asset loads on the calling goroutine.
type Poller interface {
	Poll() int
}

// Updater advances per-frame state by dt seconds.
type Updater interface {
	Update(dt float32)
}

// Driver runs one frame per Tick: deliver completed loads, update the camera
// controller, then render exactly once.
type Driver struct {
	clock      Clock
	loads      Poller
	controller Updater
	render     func()

	state   DriverState
	last    time.Time
	ticking bool
	frames  uint64
}

func NewDriver(clock Clock, loads Poller, controller Updater, render func()) *Driver {
	if clock == nil {
		clock = time.Now
	}
	return &Driver{clock: clock, loads: loads, controller: controller, render: render}
}

// Tick runs one frame and returns the elapsed time it used. The first Tick
// moves the driver to Running with dt = 0. A Tick from inside a frame is
// ignored.
func (d *Driver) Tick() float32 {
	if d.ticking {
		slog.Debug("nested frame tick ignored", "frame", d.frames)
		return 0
	}
	d.ticking = true
	defer func() { d.ticking = false }()

	now := d.clock()
	var dt float32
	if d.state == StateIdle {
		d.state = StateRunning
	} else {
		dt = float32(now.Sub(d.last).Seconds())
	}
	d.last = now

	if d.loads != nil {
		d.loads.Poll()
	}
	if d.controller != nil {
		d.controller.Update(dt)
	}
	if d.render != nil {
		d.render()
	}
	d.frames++
	return dt
}

func (d *Driver) State() DriverState {
	return d.state
}

// Frames is the number of completed ticks.
func (d *Driver) Frames() uint64 {
	return d.frames
}
