package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Reflector is a planar mirror. The scene is rendered a second time from the
// camera mirrored across the plane into a TextureWidth x TextureHeight target,
// which the mirror surface then samples in screen space.
type Reflector struct {
	Node          *Node
	ClipBias      float32
	TextureWidth  int32
	TextureHeight int32
	Color         rl.Color
}

// NewReflector builds the mirror node as a Width x Length plane.
func NewReflector(name string, width, length, clipBias float32, color rl.Color) *Reflector {
	mat := &Material{Kind: MaterialReflector, Color: color, Opacity: 1}
	return &Reflector{
		Node:     NewMesh(name, Plane{Width: width, Length: length}, mat),
		ClipBias: clipBias,
		Color:    color,
	}
}

// Resize sets the render target size from the viewport and device pixel ratio.
func (r *Reflector) Resize(width, height int32, pixelRatio float32) {
	r.TextureWidth = int32(float32(width) * pixelRatio)
	r.TextureHeight = int32(float32(height) * pixelRatio)
}

// Plane returns the world-space normal and a point on the mirror.
func (r *Reflector) Plane() (normal, point rl.Vector3) {
	return nodePlane(r.Node)
}

// nodePlane treats n's local +Y as the normal of a plane through its origin.
func nodePlane(n *Node) (normal, point rl.Vector3) {
	world := n.WorldMatrix()
	point = rl.Vector3Transform(rl.Vector3Zero(), world)
	up := rl.Vector3Transform(rl.Vector3{X: 0, Y: 1, Z: 0}, world)
	normal = rl.Vector3Normalize(rl.Vector3Subtract(up, point))
	return normal, point
}

// Reflect mirrors a point across the plane.
func (r *Reflector) Reflect(p rl.Vector3) rl.Vector3 {
	normal, point := r.Plane()
	d := rl.Vector3DotProduct(rl.Vector3Subtract(p, point), normal)
	return rl.Vector3Subtract(p, rl.Vector3Scale(normal, 2*d))
}

// Facing reports whether eye is on the reflective side of the plane.
func (r *Reflector) Facing(eye rl.Vector3) bool {
	return FrontFacing(r.Node, eye)
}

// FrontFacing reports whether eye is in front of the plane node n, on the
// side its local +Y points to.
func FrontFacing(n *Node, eye rl.Vector3) bool {
	normal, point := nodePlane(n)
	return rl.Vector3DotProduct(rl.Vector3Subtract(eye, point), normal) > 0
}

// MirrorCamera returns cam reflected across the plane.
func (r *Reflector) MirrorCamera(cam rl.Camera3D) rl.Camera3D {
	normal, _ := r.Plane()
	up := rl.Vector3Subtract(cam.Up, rl.Vector3Scale(normal, 2*rl.Vector3DotProduct(cam.Up, normal)))
	mirrored := cam
	mirrored.Position = r.Reflect(cam.Position)
	mirrored.Target = r.Reflect(cam.Target)
	mirrored.Up = up
	return mirrored
}

// ClipPlane is the plane equation (nx, ny, nz, d) used to discard geometry
// behind the mirror during the reflection pass, pushed out by ClipBias.
func (r *Reflector) ClipPlane() []float32 {
	normal, point := r.Plane()
	d := -rl.Vector3DotProduct(normal, point) - r.ClipBias
	return []float32{normal.X, normal.Y, normal.Z, d}
}
