package world

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Frustum is the six clip planes of a camera: left, right, bottom, top, near, far.
// Normals point inward.
type Frustum struct {
	planes [6]plane
}

// plane is n·p + d = 0.
type plane struct {
	normal rl.Vector3
	d      float32
}

// NewFrustum extracts the planes from a view and projection matrix
// (Gribb/Hartmann). Each plane is row 3 of the clip matrix plus or minus one
// of rows 0..2.
func NewFrustum(view, proj rl.Matrix) Frustum {
	vp := rl.MatrixMultiply(view, proj)

	rows := [4][4]float32{
		{vp.M0, vp.M4, vp.M8, vp.M12},
		{vp.M1, vp.M5, vp.M9, vp.M13},
		{vp.M2, vp.M6, vp.M10, vp.M14},
		{vp.M3, vp.M7, vp.M11, vp.M15},
	}

	var f Frustum
	for i := range 3 {
		for j, sign := range [2]float32{1, -1} {
			r := rows[i]
			w := rows[3]
			f.planes[i*2+j] = normalize(plane{
				normal: rl.Vector3{X: w[0] + sign*r[0], Y: w[1] + sign*r[1], Z: w[2] + sign*r[2]},
				d:      w[3] + sign*r[3],
			})
		}
	}
	return f
}

func normalize(p plane) plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return plane{normal: rl.Vector3Scale(p.normal, 1/length), d: p.d / length}
}

// ContainsSphere reports whether any part of the sphere is inside.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for _, p := range f.planes {
		if rl.Vector3DotProduct(p.normal, center)+p.d < -radius {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	return f.ContainsSphere(point, 0)
}
