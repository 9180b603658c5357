package engine

import (
	"sync"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func ceilingMirror() *Reflector {
	r := NewReflector("mirror", 50, 50, 0.003, ColorHex(0x889999))
	r.Node.Transform.Position = rl.Vector3{Y: 60}
	r.Node.Transform.Rotation = rl.Vector3{X: 180}
	return r
}

func TestReflectorPlaneFacesDown(t *testing.T) {
	r := ceilingMirror()

	normal, point := r.Plane()
	if !approxVec(normal, rl.Vector3{Y: -1}) {
		t.Errorf("Expected normal (0,-1,0), got %v", normal)
	}
	if !approxVec(point, rl.Vector3{Y: 60}) {
		t.Errorf("Expected point (0,60,0), got %v", point)
	}
}

func TestReflectorMirrorCamera(t *testing.T) {
	r := ceilingMirror()
	cam := rl.Camera3D{
		Position: rl.Vector3{X: -20, Y: 20, Z: 100},
		Target:   rl.Vector3{Y: 10},
		Up:       rl.Vector3{Y: 1},
	}

	m := r.MirrorCamera(cam)
	if !approxVec(m.Position, rl.Vector3{X: -20, Y: 100, Z: 100}) {
		t.Errorf("Unexpected mirrored position %v", m.Position)
	}
	if !approxVec(m.Target, rl.Vector3{Y: 110}) {
		t.Errorf("Unexpected mirrored target %v", m.Target)
	}
	if !approxVec(m.Up, rl.Vector3{Y: -1}) {
		t.Errorf("Unexpected mirrored up %v", m.Up)
	}
}

func TestReflectorFacing(t *testing.T) {
	r := ceilingMirror()
	if !r.Facing(rl.Vector3{Y: 20}) {
		t.Error("Camera below a downward mirror should see it")
	}
	if r.Facing(rl.Vector3{Y: 80}) {
		t.Error("Camera above a downward mirror should not see it")
	}
}

func TestReflectorResize(t *testing.T) {
	r := ceilingMirror()
	r.Resize(1280, 720, 2)
	if r.TextureWidth != 2560 || r.TextureHeight != 1440 {
		t.Errorf("Expected 2560x1440, got %dx%d", r.TextureWidth, r.TextureHeight)
	}
}

func TestReflectorClipPlane(t *testing.T) {
	r := ceilingMirror()
	p := r.ClipPlane()
	// Points below the mirror are kept, points above are clipped.
	below := p[1]*10 + p[3]
	above := p[1]*70 + p[3]
	if below <= 0 || above >= 0 {
		t.Errorf("Unexpected clip plane %v", p)
	}
}

func TestTextureConcurrentTiling(t *testing.T) {
	tex := NewTexture("img/sprites.png")
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tex.SetOffset(0, float32(i)/8)
			_ = tex.Tiling()
		}()
	}
	wg.Wait()

	if r := tex.Repeat(); r != (rl.Vector2{X: 1, Y: 1}) {
		t.Errorf("Default repeat should be (1,1), got %v", r)
	}
}

func TestTextureTileUV(t *testing.T) {
	tex := NewTexture("img/maille.jpg")
	for _, uv := range []rl.Vector2{{X: 0, Y: 0}, {X: 0.25, Y: 0.75}, {X: 1, Y: 1}} {
		if got := tex.TileUV(uv); !approx(got.X, uv.X) || !approx(got.Y, uv.Y) {
			t.Errorf("Untiled texture should keep uv %v, got %v", uv, got)
		}
	}

	// A strip of eight frames: frame 0 is the bottom eighth of the image.
	tex.SetRepeat(1, 0.125)
	top, bottom := tex.TileUV(rl.Vector2{Y: 0}), tex.TileUV(rl.Vector2{Y: 1})
	if !approx(top.Y, 0.875) || !approx(bottom.Y, 1) {
		t.Errorf("Expected frame 0 to span v 0.875..1, got %v..%v", top.Y, bottom.Y)
	}

	tex.SetOffset(0, 0.125)
	top, bottom = tex.TileUV(rl.Vector2{Y: 0}), tex.TileUV(rl.Vector2{Y: 1})
	if !approx(top.Y, 0.75) || !approx(bottom.Y, 0.875) {
		t.Errorf("Expected frame 1 to span v 0.75..0.875, got %v..%v", top.Y, bottom.Y)
	}
}

func TestFogFactor(t *testing.T) {
	fog := Fog{Near: 2000, Far: 4000}
	cases := []struct {
		d    float32
		want float32
	}{
		{0, 0},
		{2000, 0},
		{3000, 0.5},
		{4000, 1},
		{9000, 1},
	}
	for _, c := range cases {
		if got := fog.Factor(c.d); !approx(got, c.want) {
			t.Errorf("Factor(%v) = %v, want %v", c.d, got, c.want)
		}
	}
}

func TestDirectionalLightDirection(t *testing.T) {
	l := NewDirectionalLight(rl.Vector3{X: -200, Y: 200, Z: -400}, rl.White, 1)
	dir := l.Direction()
	want := rl.Vector3Normalize(rl.Vector3{X: 200, Y: -200, Z: 400})
	if !approxVec(dir, want) {
		t.Errorf("Expected %v, got %v", want, dir)
	}
}

func TestEventWithArgInvokesInOrder(t *testing.T) {
	var ev EventWithArg[int]
	var got []int
	ev.AddListener(func(v int) { got = append(got, v) })
	ev.AddListener(func(v int) { got = append(got, v*10) })
	ev.AddListener(nil)

	ev.Invoke(3)

	if ev.GetListenerCount() != 2 {
		t.Errorf("Expected 2 listeners, got %d", ev.GetListenerCount())
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 30 {
		t.Errorf("Unexpected invocation order %v", got)
	}
}
