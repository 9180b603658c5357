package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
	Scale    rl.Vector3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: rl.Vector3{X: 1, Y: 1, Z: 1}}
}

// Matrix combines scale -> rotate (X, then Y, then Z) -> translate.
func (t Transform) Matrix() rl.Matrix {
	scale := rl.MatrixScale(t.Scale.X, t.Scale.Y, t.Scale.Z)
	trans := rl.MatrixTranslate(t.Position.X, t.Position.Y, t.Position.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(scale, RotationMatrix(t.Rotation)), trans)
}

// RotationMatrix builds a rotation from Euler angles in degrees.
func RotationMatrix(rot rl.Vector3) rl.Matrix {
	rotX := rl.MatrixRotateX(rot.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(rot.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(rot.Z * rl.Deg2rad)
	return rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
}

// Renderable pairs a geometry with a material. Materials are shared by pointer:
// several renderables may hold the same *Material.
type Renderable struct {
	Geometry Geometry
	Material *Material
}

type Node struct {
	Name          string
	Transform     Transform
	Visible       bool
	CastShadow    bool
	ReceiveShadow bool
	Renderable    *Renderable
	Parent        *Node
	Children      []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Visible:   true,
		Transform: NewTransform(),
		Children:  make([]*Node, 0),
	}
}

// NewMesh returns a node carrying the given geometry and material.
func NewMesh(name string, geometry Geometry, material *Material) *Node {
	n := NewNode(name)
	n.Renderable = &Renderable{Geometry: geometry, Material: material}
	return n
}

// IsMesh reports whether the node carries something to draw.
func (n *Node) IsMesh() bool {
	return n.Renderable != nil && n.Renderable.Geometry != nil
}

// AddChild appends child, detaching it from any previous parent first.
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Traverse visits n and every descendant depth-first, parents before children,
// children in insertion order.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// SetShadows sets the shadow flags on every mesh in the subtree.
func (n *Node) SetShadows(cast, receive bool) {
	n.Traverse(func(c *Node) {
		if c.IsMesh() {
			c.CastShadow = cast
			c.ReceiveShadow = receive
		}
	})
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// IsVisible is false if the node or any ancestor is hidden.
func (n *Node) IsVisible() bool {
	for g := n; g != nil; g = g.Parent {
		if !g.Visible {
			return false
		}
	}
	return true
}

func (n *Node) LocalMatrix() rl.Matrix {
	return n.Transform.Matrix()
}

// WorldMatrix composes the local transform with every ancestor's.
func (n *Node) WorldMatrix() rl.Matrix {
	if n.Parent == nil {
		return n.LocalMatrix()
	}
	return rl.MatrixMultiply(n.LocalMatrix(), n.Parent.WorldMatrix())
}

func (n *Node) WorldPosition() rl.Vector3 {
	return rl.Vector3Transform(rl.Vector3Zero(), n.WorldMatrix())
}

func (n *Node) WorldScale() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Scale
	}
	ps := n.Parent.WorldScale()
	return rl.Vector3{
		X: ps.X * n.Transform.Scale.X,
		Y: ps.Y * n.Transform.Scale.Y,
		Z: ps.Z * n.Transform.Scale.Z,
	}
}

// WorldBounds returns a bounding sphere of the node's geometry in world space.
func (n *Node) WorldBounds() (center rl.Vector3, radius float32) {
	if !n.IsMesh() {
		return n.WorldPosition(), 0
	}
	box := n.Renderable.Geometry.Bounds()
	local := rl.Vector3Scale(rl.Vector3Add(box.Min, box.Max), 0.5)
	half := rl.Vector3Scale(rl.Vector3Subtract(box.Max, box.Min), 0.5)

	s := n.WorldScale()
	maxScale := max(abs32(s.X), abs32(s.Y), abs32(s.Z))
	return rl.Vector3Transform(local, n.WorldMatrix()), rl.Vector3Length(half) * maxScale
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
