package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Geometry describes a shape. Procedural shapes are centered on the local origin;
// the renderer turns them into GPU meshes on first use.
type Geometry interface {
	Bounds() rl.BoundingBox
}

type Box struct {
	Width, Height, Depth float32
}

func (b Box) Bounds() rl.BoundingBox {
	return centered(b.Width, b.Height, b.Depth)
}

// Cylinder is a (possibly tapered) cylinder along the Y axis.
type Cylinder struct {
	RadiusTop    float32
	RadiusBottom float32
	Height       float32
	Segments     int
}

func (c Cylinder) Bounds() rl.BoundingBox {
	r := max(c.RadiusTop, c.RadiusBottom)
	return centered(2*r, c.Height, 2*r)
}

// Tapered reports whether the two radii differ.
func (c Cylinder) Tapered() bool {
	return c.RadiusTop != c.RadiusBottom
}

// Cone points up the Y axis, base at -Height/2.
type Cone struct {
	Radius   float32
	Height   float32
	Segments int
}

func (c Cone) Bounds() rl.BoundingBox {
	return centered(2*c.Radius, c.Height, 2*c.Radius)
}

// Plane lies in XZ facing +Y.
type Plane struct {
	Width, Length float32
}

func (p Plane) Bounds() rl.BoundingBox {
	return centered(p.Width, 0, p.Length)
}

// ModelMesh is one mesh of a loaded model.
type ModelMesh struct {
	Model         *Model
	Index         int
	MaterialIndex int
	Box           rl.BoundingBox
}

func (m ModelMesh) Bounds() rl.BoundingBox {
	return m.Box
}

// Model is a GPU-resident model owned by the asset manager.
type Model struct {
	Path   string
	Handle rl.Model
}

func centered(w, h, d float32) rl.BoundingBox {
	half := rl.Vector3{X: w / 2, Y: h / 2, Z: d / 2}
	return rl.BoundingBox{Min: rl.Vector3Negate(half), Max: half}
}
