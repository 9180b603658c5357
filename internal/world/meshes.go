package world

import (
	"math"
	"unsafe"

	"riverscene/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// meshData is an unindexed triangle list.
type meshData struct {
	positions []float32
	normals   []float32
	texcoords []float32
}

func (m *meshData) vertex(p, n rl.Vector3, u, v float32) {
	m.positions = append(m.positions, p.X, p.Y, p.Z)
	m.normals = append(m.normals, n.X, n.Y, n.Z)
	m.texcoords = append(m.texcoords, u, v)
}

func (m *meshData) count() int {
	return len(m.positions) / 3
}

// frustumMesh builds a capped, possibly tapered cylinder along Y, centered on
// the origin. A zero top radius gives a cone. Triangles wind counter-clockwise
// seen from outside.
func frustumMesh(top, bottom, height float32, segments int) meshData {
	if segments < 3 {
		segments = 3
	}
	var m meshData
	half := height / 2

	// Side normals tilt toward the narrow end.
	slope := (bottom - top) / height
	ring := func(i int) (x, z float32) {
		a := 2 * math.Pi * float64(i) / float64(segments)
		return float32(math.Sin(a)), float32(math.Cos(a))
	}
	normal := func(x, z float32) rl.Vector3 {
		return rl.Vector3Normalize(rl.Vector3{X: x, Y: slope, Z: z})
	}

	for i := range segments {
		x0, z0 := ring(i)
		x1, z1 := ring(i + 1)
		u0 := float32(i) / float32(segments)
		u1 := float32(i+1) / float32(segments)

		b0 := rl.Vector3{X: x0 * bottom, Y: -half, Z: z0 * bottom}
		b1 := rl.Vector3{X: x1 * bottom, Y: -half, Z: z1 * bottom}
		t0 := rl.Vector3{X: x0 * top, Y: half, Z: z0 * top}
		t1 := rl.Vector3{X: x1 * top, Y: half, Z: z1 * top}
		n0, n1 := normal(x0, z0), normal(x1, z1)

		m.vertex(b0, n0, u0, 1)
		m.vertex(b1, n1, u1, 1)
		m.vertex(t1, n1, u1, 0)
		if top > 0 {
			m.vertex(b0, n0, u0, 1)
			m.vertex(t1, n1, u1, 0)
			m.vertex(t0, n0, u0, 0)
		}

		up := rl.Vector3{X: 0, Y: 1, Z: 0}
		down := rl.Vector3{X: 0, Y: -1, Z: 0}
		if top > 0 {
			m.vertex(rl.Vector3{Y: half}, up, 0.5, 0.5)
			m.vertex(t0, up, 0.5+x0/2, 0.5+z0/2)
			m.vertex(t1, up, 0.5+x1/2, 0.5+z1/2)
		}
		if bottom > 0 {
			m.vertex(rl.Vector3{Y: -half}, down, 0.5, 0.5)
			m.vertex(b1, down, 0.5+x1/2, 0.5+z1/2)
			m.vertex(b0, down, 0.5+x0/2, 0.5+z0/2)
		}
	}
	return m
}

// upload copies the vertex data into raylib-owned memory so UnloadMesh can free it.
func (m meshData) upload() rl.Mesh {
	n := m.count()
	mesh := rl.Mesh{
		VertexCount:   int32(n),
		TriangleCount: int32(n / 3),
		Vertices:      cFloats(m.positions),
		Normals:       cFloats(m.normals),
		Texcoords:     cFloats(m.texcoords),
	}
	rl.UploadMesh(&mesh, false)
	return mesh
}

func cFloats(src []float32) *float32 {
	ptr := (*float32)(rl.MemAlloc(uint32(len(src) * 4)))
	copy(unsafe.Slice(ptr, len(src)), src)
	return ptr
}

// meshCache turns procedural geometry into GPU meshes on first use. Equal
// geometry values share one mesh.
type meshCache struct {
	meshes map[engine.Geometry]rl.Mesh
}

func newMeshCache() *meshCache {
	return &meshCache{meshes: make(map[engine.Geometry]rl.Mesh)}
}

// get returns the mesh for g. Model meshes come straight from their model.
func (c *meshCache) get(g engine.Geometry) (rl.Mesh, bool) {
	if mm, ok := g.(engine.ModelMesh); ok {
		if mm.Model == nil || mm.Index >= int(mm.Model.Handle.MeshCount) {
			return rl.Mesh{}, false
		}
		return unsafe.Slice(mm.Model.Handle.Meshes, mm.Model.Handle.MeshCount)[mm.Index], true
	}
	if mesh, ok := c.meshes[g]; ok {
		return mesh, true
	}

	var mesh rl.Mesh
	switch shape := g.(type) {
	case engine.Box:
		mesh = rl.GenMeshCube(shape.Width, shape.Height, shape.Depth)
	case engine.Plane:
		mesh = rl.GenMeshPlane(shape.Width, shape.Length, 1, 1)
	case engine.Cylinder:
		mesh = frustumMesh(shape.RadiusTop, shape.RadiusBottom, shape.Height, shape.Segments).upload()
	case engine.Cone:
		mesh = frustumMesh(0, shape.Radius, shape.Height, shape.Segments).upload()
	default:
		return rl.Mesh{}, false
	}
	c.meshes[g] = mesh
	return mesh, true
}

func (c *meshCache) unload() {
	for g, mesh := range c.meshes {
		rl.UnloadMesh(&mesh)
		delete(c.meshes, g)
	}
}
