// Package camera implements the orbit camera controller.
package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// minPolar keeps the camera off the poles so the up vector stays valid.
const minPolar = 0.01

// Input is the pointer state the orbit controller reads once per Update.
type Input interface {
	MouseDelta() rl.Vector2
	WheelMove() float32
	RotateDown() bool
	PanDown() bool
}

// Params is the camera's initial pose, lens and controller tuning.
type Params struct {
	Position    rl.Vector3
	Target      rl.Vector3
	FOV         float32 // vertical, degrees
	Near, Far   float32
	Damping     float32 // 0 = no inertia
	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32
	MinDistance float32
	MaxDistance float32
}

// Orbit rotates the camera around Target on left drag, pans on right drag and
// dollies on the wheel. Position and Target may be written directly between
// updates; the next Update continues from wherever they are.
type Orbit struct {
	Position rl.Vector3
	Target   rl.Vector3
	Up       rl.Vector3
	FOV      float32
	Near     float32
	Far      float32
	Aspect   float32

	// Enabled gates pointer input. Damped motion already in progress still settles.
	Enabled bool

	params Params
	input  Input
	width  float32
	height float32

	deltaTheta float32
	deltaPhi   float32
	pan        rl.Vector3
	scale      float32

	reset *resetAnim
}

type resetAnim struct {
	tweens [6]*gween.Tween
	done   [6]bool
}

func NewOrbit(p Params, input Input) *Orbit {
	return &Orbit{
		Position: p.Position,
		Target:   p.Target,
		Up:       rl.Vector3{X: 0, Y: 1, Z: 0},
		FOV:      p.FOV,
		Near:     p.Near,
		Far:      p.Far,
		Aspect:   1,
		Enabled:  true,
		params:   p,
		input:    input,
		width:    1,
		height:   1,
		scale:    1,
	}
}

// SetViewport updates the aspect ratio and the pixel size used to scale drags.
func (o *Orbit) SetViewport(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	o.width = float32(width)
	o.height = float32(height)
	o.Aspect = o.width / o.height
}

// SetParams swaps in new tuning and lens values without moving the camera.
func (o *Orbit) SetParams(p Params) {
	o.params = p
	o.FOV = p.FOV
	o.Near = p.Near
	o.Far = p.Far
}

// Reset animates Position and Target back to their initial values over
// duration seconds. Pointer input is ignored until the animation finishes.
func (o *Orbit) Reset(duration float32) {
	if duration <= 0 {
		o.Position, o.Target = o.params.Position, o.params.Target
		o.reset = nil
		o.stop()
		return
	}
	from := [6]float32{o.Position.X, o.Position.Y, o.Position.Z, o.Target.X, o.Target.Y, o.Target.Z}
	to := [6]float32{
		o.params.Position.X, o.params.Position.Y, o.params.Position.Z,
		o.params.Target.X, o.params.Target.Y, o.params.Target.Z,
	}
	anim := &resetAnim{}
	for i := range anim.tweens {
		anim.tweens[i] = gween.New(from[i], to[i], duration, ease.OutCubic)
	}
	o.reset = anim
	o.stop()
}

// Resetting reports whether a Reset animation is running.
func (o *Orbit) Resetting() bool {
	return o.reset != nil
}

func (o *Orbit) stop() {
	o.deltaTheta, o.deltaPhi = 0, 0
	o.pan = rl.Vector3{}
	o.scale = 1
}

// Update applies this frame's input and integrates damped motion over dt seconds.
func (o *Orbit) Update(dt float32) {
	if o.reset != nil {
		o.updateReset(dt)
		return
	}
	if o.Enabled && o.input != nil {
		o.readInput()
	}

	offset := rl.Vector3Subtract(o.Position, o.Target)
	radius := rl.Vector3Length(offset)
	if radius == 0 {
		radius = o.params.MinDistance
		offset = rl.Vector3{X: 0, Y: 0, Z: radius}
	}
	theta := math32.Atan2(offset.X, offset.Z)
	phi := math32.Acos(clamp(offset.Y/radius, -1, 1))

	// Portion of the pending motion applied this frame. With damping d this is
	// d per 60Hz frame, adjusted so the settle time does not depend on frame rate.
	step := float32(1)
	if o.params.Damping > 0 {
		step = 1 - math32.Pow(1-o.params.Damping, dt*60)
	}

	theta += o.deltaTheta * step
	phi += o.deltaPhi * step
	phi = clamp(phi, minPolar, math32.Pi-minPolar)

	radius = clamp(radius*o.scale, o.params.MinDistance, o.params.MaxDistance)

	o.Target = rl.Vector3Add(o.Target, rl.Vector3Scale(o.pan, step))

	sinPhi := math32.Sin(phi)
	offset = rl.Vector3{
		X: radius * sinPhi * math32.Sin(theta),
		Y: radius * math32.Cos(phi),
		Z: radius * sinPhi * math32.Cos(theta),
	}
	o.Position = rl.Vector3Add(o.Target, offset)

	if o.params.Damping > 0 {
		o.deltaTheta *= 1 - step
		o.deltaPhi *= 1 - step
		o.pan = rl.Vector3Scale(o.pan, 1-step)
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.pan = rl.Vector3{}
	}
	o.scale = 1
}

func (o *Orbit) updateReset(dt float32) {
	var v [6]float32
	all := true
	for i, tw := range o.reset.tweens {
		val, done := tw.Update(dt)
		v[i] = val
		o.reset.done[i] = o.reset.done[i] || done
		all = all && o.reset.done[i]
	}
	o.Position = rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
	o.Target = rl.Vector3{X: v[3], Y: v[4], Z: v[5]}
	if all {
		o.reset = nil
	}
}

func (o *Orbit) readInput() {
	delta := o.input.MouseDelta()

	if o.input.RotateDown() {
		o.deltaTheta -= 2 * math32.Pi * delta.X / o.height * o.params.RotateSpeed
		o.deltaPhi -= 2 * math32.Pi * delta.Y / o.height * o.params.RotateSpeed
	}

	if o.input.PanDown() && (delta.X != 0 || delta.Y != 0) {
		o.addPan(delta)
	}

	if wheel := o.input.WheelMove(); wheel != 0 {
		zoom := math32.Pow(0.95, o.params.ZoomSpeed*math32.Abs(wheel))
		if wheel > 0 {
			o.scale *= zoom
		} else {
			o.scale /= zoom
		}
	}
}

// addPan moves the target in the view plane so the point under the cursor
// follows the drag at the target's depth.
func (o *Orbit) addPan(delta rl.Vector2) {
	offset := rl.Vector3Subtract(o.Position, o.Target)
	distance := rl.Vector3Length(offset) * math32.Tan(o.FOV/2*rl.Deg2rad)
	worldPerPixel := 2 * distance / o.height * o.params.PanSpeed

	forward := rl.Vector3Normalize(rl.Vector3Negate(offset))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, o.Up))
	up := rl.Vector3CrossProduct(right, forward)

	move := rl.Vector3Add(
		rl.Vector3Scale(right, -delta.X*worldPerPixel),
		rl.Vector3Scale(up, delta.Y*worldPerPixel),
	)
	o.pan = rl.Vector3Add(o.pan, move)
}

// Distance is the current camera to target distance.
func (o *Orbit) Distance() float32 {
	return rl.Vector3Distance(o.Position, o.Target)
}

func (o *Orbit) Camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   o.Position,
		Target:     o.Target,
		Up:         o.Up,
		Fovy:       o.FOV,
		Projection: rl.CameraPerspective,
	}
}

func (o *Orbit) View() rl.Matrix {
	return rl.MatrixLookAt(o.Position, o.Target, o.Up)
}

func (o *Orbit) Projection() rl.Matrix {
	return rl.MatrixPerspective(o.FOV*rl.Deg2rad, o.Aspect, o.Near, o.Far)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
