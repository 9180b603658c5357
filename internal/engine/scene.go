package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Scene struct {
	Name       string
	Root       *Node
	Background rl.Color
	Fog        *Fog
	Ambient    AmbientLight
	Sun        *DirectionalLight
	Reflectors []*Reflector
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:       name,
		Root:       NewNode(name),
		Background: rl.Black,
		Ambient:    AmbientLight{Color: rl.Black, Intensity: 1},
	}
}

// Add attaches n directly under the root.
func (s *Scene) Add(n *Node) {
	s.Root.AddChild(n)
}

func (s *Scene) Remove(n *Node) {
	s.Root.RemoveChild(n)
}

// AddReflector attaches the mirror node and registers it for the reflection pass.
func (s *Scene) AddReflector(r *Reflector) {
	s.Add(r.Node)
	s.Reflectors = append(s.Reflectors, r)
}

func (s *Scene) FindByName(name string) *Node {
	return s.Root.Find(name)
}

// Meshes returns every visible mesh node in tree order.
func (s *Scene) Meshes() []*Node {
	var result []*Node
	s.Root.Traverse(func(n *Node) {
		if n.IsMesh() && n.IsVisible() {
			result = append(result, n)
		}
	})
	return result
}
