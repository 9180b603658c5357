package engine

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func approxVec(a, b rl.Vector3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestNewNode(t *testing.T) {
	n := NewNode("Knight")

	if n.Name != "Knight" {
		t.Errorf("Expected name 'Knight', got '%s'", n.Name)
	}
	if !n.Visible {
		t.Error("New node should be visible")
	}
	if n.Transform.Scale != (rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Expected unit scale, got %v", n.Transform.Scale)
	}
	if n.IsMesh() {
		t.Error("Plain node should not be a mesh")
	}
}

func TestNodeParentChild(t *testing.T) {
	parent := NewNode("Parent")
	child := NewNode("Child")

	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("Child.Parent should be set")
	}
	if len(parent.Children) != 1 || parent.Children[0] != child {
		t.Error("Child not added to parent's Children slice")
	}
}

func TestNodeReparent(t *testing.T) {
	a := NewNode("A")
	b := NewNode("B")
	child := NewNode("Child")

	a.AddChild(child)
	b.AddChild(child)

	if len(a.Children) != 0 {
		t.Errorf("Expected old parent to lose child, has %d", len(a.Children))
	}
	if child.Parent != b {
		t.Error("Child.Parent should point at new parent")
	}
}

func TestNodeRemoveChild(t *testing.T) {
	parent := NewNode("Parent")
	child1 := NewNode("Child1")
	child2 := NewNode("Child2")

	parent.AddChild(child1)
	parent.AddChild(child2)
	parent.RemoveChild(child1)

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child after removal, got %d", len(parent.Children))
	}
	if parent.Children[0] != child2 {
		t.Error("Wrong child removed")
	}
	if child1.Parent != nil {
		t.Error("Removed child should have nil parent")
	}
}

func TestNodeTraverseOrder(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	a1 := NewNode("a1")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(a1)

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })

	want := []string{"root", "a", "a1", "b"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestNodeSetShadowsOnlyTouchesMeshes(t *testing.T) {
	group := NewNode("group")
	mesh := NewMesh("mesh", Box{Width: 1, Height: 1, Depth: 1}, NewBasicMaterial(rl.White))
	group.AddChild(mesh)

	group.SetShadows(true, true)

	if group.CastShadow || group.ReceiveShadow {
		t.Error("Group node should not get shadow flags")
	}
	if !mesh.CastShadow || !mesh.ReceiveShadow {
		t.Error("Mesh node should cast and receive shadows")
	}
}

func TestNodeWorldPosition(t *testing.T) {
	parent := NewNode("Parent")
	parent.Transform.Position = rl.Vector3{X: -25, Y: 10, Z: 0}
	parent.Transform.Scale = rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}

	child := NewNode("Child")
	child.Transform.Position = rl.Vector3{X: 0, Y: 25, Z: 0}
	parent.AddChild(child)

	got := child.WorldPosition()
	want := rl.Vector3{X: -25, Y: 22.5, Z: 0}
	if !approxVec(got, want) {
		t.Errorf("Expected world position %v, got %v", want, got)
	}
}

func TestNodeWorldPositionWithRotation(t *testing.T) {
	parent := NewNode("Parent")
	parent.Transform.Rotation = rl.Vector3{Y: 90}

	child := NewNode("Child")
	child.Transform.Position = rl.Vector3{X: 1}
	parent.AddChild(child)

	got := child.WorldPosition()
	want := rl.Vector3Transform(rl.Vector3{X: 1}, rl.MatrixRotateY(90*rl.Deg2rad))
	if !approxVec(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNodeWorldScale(t *testing.T) {
	parent := NewNode("Parent")
	parent.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	child := NewNode("Child")
	child.Transform.Scale = rl.Vector3{X: 0.5, Y: 3, Z: 1}
	parent.AddChild(child)

	got := child.WorldScale()
	if !approxVec(got, rl.Vector3{X: 1, Y: 6, Z: 2}) {
		t.Errorf("Unexpected world scale %v", got)
	}
}

func TestNodeVisibilityInherited(t *testing.T) {
	parent := NewNode("Parent")
	child := NewNode("Child")
	parent.AddChild(child)

	parent.Visible = false
	if child.IsVisible() {
		t.Error("Child of hidden parent should not be visible")
	}
}

func TestNodeWorldBounds(t *testing.T) {
	n := NewMesh("box", Box{Width: 2, Height: 2, Depth: 2}, NewBasicMaterial(rl.White))
	n.Transform.Position = rl.Vector3{X: 5}
	n.Transform.Scale = rl.Vector3{X: 2, Y: 1, Z: 1}

	center, radius := n.WorldBounds()
	if !approxVec(center, rl.Vector3{X: 5}) {
		t.Errorf("Unexpected center %v", center)
	}
	if !approx(radius, float32(math.Sqrt(3))*2) {
		t.Errorf("Unexpected radius %f", radius)
	}
}

func TestSceneMeshesSkipsHidden(t *testing.T) {
	scene := NewScene("Test")
	visible := NewMesh("visible", Plane{Width: 1, Length: 1}, NewBasicMaterial(rl.White))
	hidden := NewMesh("hidden", Plane{Width: 1, Length: 1}, NewBasicMaterial(rl.White))
	hidden.Visible = false
	scene.Add(visible)
	scene.Add(hidden)

	meshes := scene.Meshes()
	if len(meshes) != 1 || meshes[0] != visible {
		t.Errorf("Expected only the visible mesh, got %d meshes", len(meshes))
	}
}

func TestSceneFindByName(t *testing.T) {
	scene := NewScene("Test")
	group := NewNode("knight")
	group.AddChild(NewNode("sword"))
	scene.Add(group)

	if scene.FindByName("sword") == nil {
		t.Error("FindByName should search the whole tree")
	}
	if scene.FindByName("DoesNotExist") != nil {
		t.Error("FindByName should return nil for non-existent name")
	}
}
