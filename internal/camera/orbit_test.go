package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInput struct {
	delta  rl.Vector2
	wheel  float32
	rotate bool
	pan    bool
}

func (f *fakeInput) MouseDelta() rl.Vector2 { return f.delta }
func (f *fakeInput) WheelMove() float32     { return f.wheel }
func (f *fakeInput) RotateDown() bool       { return f.rotate }
func (f *fakeInput) PanDown() bool          { return f.pan }

func testParams() Params {
	return Params{
		Position:    rl.Vector3{X: -20, Y: 20, Z: 100},
		Target:      rl.Vector3{X: 0, Y: 10, Z: 0},
		FOV:         35,
		Near:        1,
		Far:         4000,
		Damping:     0.05,
		RotateSpeed: 1,
		ZoomSpeed:   1,
		PanSpeed:    1,
		MinDistance: 5,
		MaxDistance: 2000,
	}
}

func assertVecNear(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-3)
	assert.InDelta(t, want.Y, got.Y, 1e-3)
	assert.InDelta(t, want.Z, got.Z, 1e-3)
}

func TestOrbitIdleKeepsPose(t *testing.T) {
	o := NewOrbit(testParams(), &fakeInput{})
	o.Update(0)
	o.Update(1.0 / 60)

	assertVecNear(t, rl.Vector3{X: -20, Y: 20, Z: 100}, o.Position)
	assertVecNear(t, rl.Vector3{X: 0, Y: 10, Z: 0}, o.Target)
}

func TestOrbitRotateKeepsDistance(t *testing.T) {
	in := &fakeInput{rotate: true, delta: rl.Vector2{X: 40, Y: 10}}
	o := NewOrbit(testParams(), in)
	o.SetViewport(1280, 720)
	before := o.Distance()
	start := o.Position

	o.Update(1.0 / 60)
	in.rotate = false
	for range 120 {
		o.Update(1.0 / 60)
	}

	assert.InDelta(t, before, o.Distance(), 1e-2)
	assert.NotEqual(t, start, o.Position)
	assertVecNear(t, rl.Vector3{X: 0, Y: 10, Z: 0}, o.Target)
}

func TestOrbitDampingSettles(t *testing.T) {
	in := &fakeInput{rotate: true, delta: rl.Vector2{X: 100}}
	o := NewOrbit(testParams(), in)
	o.SetViewport(800, 600)

	o.Update(1.0 / 60)
	in.rotate = false
	for range 600 {
		o.Update(1.0 / 60)
	}
	settled := o.Position
	o.Update(1.0 / 60)
	assertVecNear(t, settled, o.Position)
}

func TestOrbitZeroDtDoesNotMove(t *testing.T) {
	in := &fakeInput{rotate: true, delta: rl.Vector2{X: 100}}
	o := NewOrbit(testParams(), in)
	o.Update(0)
	assertVecNear(t, rl.Vector3{X: -20, Y: 20, Z: 100}, o.Position)
}

func TestOrbitPolarClamp(t *testing.T) {
	p := testParams()
	p.Damping = 0
	in := &fakeInput{rotate: true, delta: rl.Vector2{Y: 100000}}
	o := NewOrbit(p, in)
	o.SetViewport(800, 600)
	o.Update(1.0 / 60)

	dir := rl.Vector3Normalize(rl.Vector3Subtract(o.Position, o.Target))
	assert.Less(t, dir.Y, float32(1))
	assert.Greater(t, dir.Y, float32(0.99))
}

func TestOrbitZoomClampsDistance(t *testing.T) {
	p := testParams()
	p.Damping = 0
	in := &fakeInput{wheel: 1000}
	o := NewOrbit(p, in)
	o.Update(1.0 / 60)
	assert.InDelta(t, p.MinDistance, o.Distance(), 1e-3)

	in.wheel = -1000
	o.Update(1.0 / 60)
	assert.InDelta(t, p.MaxDistance, o.Distance(), 1e-1)
}

func TestOrbitPanMovesTargetAndPosition(t *testing.T) {
	p := testParams()
	p.Damping = 0
	in := &fakeInput{pan: true, delta: rl.Vector2{X: 50}}
	o := NewOrbit(p, in)
	o.SetViewport(800, 600)
	before := o.Distance()

	o.Update(1.0 / 60)
	assert.NotEqual(t, p.Target, o.Target)
	assert.InDelta(t, before, o.Distance(), 1e-2)
	assert.InDelta(t, p.Target.Y, o.Target.Y, 1e-2, "horizontal drag stays level")
}

func TestOrbitDisabledIgnoresInput(t *testing.T) {
	in := &fakeInput{rotate: true, delta: rl.Vector2{X: 100}}
	o := NewOrbit(testParams(), in)
	o.Enabled = false
	o.Update(1.0 / 60)
	assertVecNear(t, rl.Vector3{X: -20, Y: 20, Z: 100}, o.Position)
}

func TestOrbitPositionWritesAreKept(t *testing.T) {
	o := NewOrbit(testParams(), &fakeInput{})
	o.Position = rl.Vector3{X: 50, Y: 30, Z: 40}
	o.Update(1.0 / 60)
	assertVecNear(t, rl.Vector3{X: 50, Y: 30, Z: 40}, o.Position)
}

func TestOrbitReset(t *testing.T) {
	o := NewOrbit(testParams(), &fakeInput{})
	o.Position = rl.Vector3{X: 80, Y: 90, Z: -10}
	o.Target = rl.Vector3{X: 5, Y: 5, Z: 5}

	o.Reset(0.5)
	require.True(t, o.Resetting())
	o.Update(0.25)
	assert.NotEqual(t, rl.Vector3{X: 80, Y: 90, Z: -10}, o.Position)

	o.Update(0.5)
	assert.False(t, o.Resetting())
	assertVecNear(t, rl.Vector3{X: -20, Y: 20, Z: 100}, o.Position)
	assertVecNear(t, rl.Vector3{X: 0, Y: 10, Z: 0}, o.Target)
}

func TestOrbitResetImmediate(t *testing.T) {
	o := NewOrbit(testParams(), &fakeInput{})
	o.Position = rl.Vector3{X: 1, Y: 2, Z: 3}
	o.Reset(0)
	assert.False(t, o.Resetting())
	assert.Equal(t, rl.Vector3{X: -20, Y: 20, Z: 100}, o.Position)
}

func TestOrbitViewportAspect(t *testing.T) {
	o := NewOrbit(testParams(), nil)
	o.SetViewport(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, o.Aspect, 1e-6)

	o.SetViewport(0, 100)
	assert.InDelta(t, 1920.0/1080.0, o.Aspect, 1e-6, "degenerate sizes are ignored")

	cam := o.Camera3D()
	assert.Equal(t, float32(35), cam.Fovy)
	assert.Equal(t, o.Position, cam.Position)
}
