// Package sprite steps a vertical sprite sheet through its frames by moving
// the texture's UV offset.
package sprite

import (
	"context"
	"sync"
	"time"

	"riverscene/internal/engine"
)

// Animator shows one frame of an N-frame vertical strip at a time.
type Animator struct {
	tex    *engine.Texture
	frames int

	mu    sync.Mutex
	frame int
}

// New configures tex for an N-frame strip: repeat wrapping on both axes and a
// repeat rectangle one frame tall. frames below 1 is treated as 1.
func New(tex *engine.Texture, frames int) *Animator {
	if frames < 1 {
		frames = 1
	}
	tex.SetWrap(engine.WrapRepeat, engine.WrapRepeat)
	tex.SetRepeat(1, 1/float32(frames))
	return &Animator{tex: tex, frames: frames}
}

// Tick shows the current frame, then advances to the next one.
func (a *Animator) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tex.SetOffset(0, float32(a.frame)/float32(a.frames))
	a.frame = (a.frame + 1) % a.frames
}

// Frame is the frame the next Tick will show.
func (a *Animator) Frame() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

func (a *Animator) Frames() int {
	return a.frames
}

func (a *Animator) Texture() *engine.Texture {
	return a.tex
}

// Task is a running animation. It stops when Stop is called or when the
// context it was started with is cancelled.
type Task struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start ticks the animator every period on its own goroutine. The first tick
// happens one period after Start.
func (a *Animator) Start(ctx context.Context, period time.Duration) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Tick()
			}
		}
	}()
	return t
}

// Stop cancels the task and waits for its goroutine to exit. Safe to call
// more than once.
func (t *Task) Stop() {
	t.cancel()
	t.wg.Wait()
}
