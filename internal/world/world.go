// Package world assembles the river scene and renders it.
package world

import (
	"context"
	"log/slog"
	"time"

	"riverscene/internal/config"
	"riverscene/internal/engine"
	"riverscene/internal/figure"
	"riverscene/internal/sprite"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Loader is the part of the asset loader the scene needs. Callbacks run on
// the goroutine that polls the loader.
type Loader interface {
	LoadModel(path string, onLoad func(*engine.Node), onError func(error))
	LoadTexture(path string, onLoad func(*engine.Texture), onError func(error)) *engine.Texture
	Texture(path string) *engine.Texture
}

type AssetState int

const (
	AssetPending AssetState = iota
	AssetLoaded
	AssetFailed
)

func (s AssetState) String() string {
	switch s {
	case AssetPending:
		return "loading"
	case AssetLoaded:
		return "ok"
	case AssetFailed:
		return "failed"
	}
	return "unknown"
}

type AssetStatus struct {
	Name  string
	Path  string
	State AssetState
	Err   error
}

// Viewport is the drawable size in screen units plus the device pixel ratio.
type Viewport struct {
	Width      int32
	Height     int32
	PixelRatio float32
}

type World struct {
	Scene  *engine.Scene
	Knight *engine.Node
	Mirror *engine.Reflector
	Frame  []*engine.Node
	Ring   *engine.Node

	// Fragments holds the loaded model roots by asset name.
	Fragments map[string]*engine.Node

	// StatusChanged fires on the polling goroutine whenever an asset finishes.
	StatusChanged engine.EventWithArg[AssetStatus]

	animator *sprite.Animator
	period   time.Duration
	task     *sprite.Task
	status   []AssetStatus
}

type modelSpec struct {
	name  string
	path  string
	place func(*engine.Node)
}

// Build creates the scene and requests its assets. Models attach themselves
// when their loads complete; a failed load is logged and leaves the rest of
// the scene untouched.
func Build(cfg config.Config, loader Loader, vp Viewport) *World {
	w := &World{
		Scene:     engine.NewScene("river"),
		Fragments: make(map[string]*engine.Node),
		period:    cfg.Sprite.Interval,
	}
	s := w.Scene

	s.Background = cfg.Window.Background.RGBA()
	s.Fog = &engine.Fog{Color: cfg.Fog.Color.RGBA(), Near: cfg.Fog.Near, Far: cfg.Fog.Far}
	s.Ambient = engine.AmbientLight{Color: cfg.Light.Ambient.RGBA(), Intensity: 1}
	s.Sun = newSun(cfg.Light)

	models := []modelSpec{
		{"river", cfg.Assets.River, func(n *engine.Node) {
			n.Transform.Scale = rl.NewVector3(10, 10, 10)
			n.SetShadows(true, true)
		}},
		{"bridge", cfg.Assets.Bridge, func(n *engine.Node) {
			n.Transform.Scale = rl.NewVector3(0.85, 0.85, 0.85)
			n.Transform.Position = rl.NewVector3(5, 20, 0)
			n.SetShadows(true, true)
		}},
		{"skybox", cfg.Assets.Skybox, func(*engine.Node) {}},
	}
	for _, m := range models {
		w.loadModel(loader, m)
	}

	w.trackTexture(loader, "maille", figure.MailleTexture)
	w.Knight = figure.Knight(loader)
	w.Knight.Transform.Scale = rl.NewVector3(0.5, 0.5, 0.5)
	w.Knight.Transform.Position = rl.NewVector3(-25, 10, 0)
	s.Add(w.Knight)

	w.addMirror(cfg.Mirror, vp)
	w.addRing(cfg.Sprite, w.trackTexture(loader, "sprites", cfg.Assets.Sprites))

	return w
}

func newSun(lc config.LightConfig) *engine.DirectionalLight {
	sun := engine.NewDirectionalLight(lc.Position.Vector3(), lc.Color.RGBA(), lc.Intensity)
	sun.CastShadow = true
	sun.Shadow = engine.ShadowParams{
		MapSize: lc.ShadowMap,
		Left:    -lc.ShadowExtent,
		Right:   lc.ShadowExtent,
		Top:     lc.ShadowExtent,
		Bottom:  -lc.ShadowExtent,
		Near:    lc.ShadowNear,
		Far:     lc.ShadowFar,
		Bias:    lc.ShadowBias,
	}
	return sun
}

func (w *World) addStatus(name, path string) int {
	w.status = append(w.status, AssetStatus{Name: name, Path: path})
	return len(w.status) - 1
}

func (w *World) finish(i int, err error) {
	st := &w.status[i]
	if err != nil {
		st.State, st.Err = AssetFailed, err
		slog.Error("asset load failed", "asset", st.Name, "path", st.Path, "err", err)
	} else {
		st.State = AssetLoaded
		slog.Debug("asset loaded", "asset", st.Name, "path", st.Path)
	}
	w.StatusChanged.Invoke(*st)
}

func (w *World) loadModel(loader Loader, m modelSpec) {
	i := w.addStatus(m.name, m.path)
	loader.LoadModel(m.path,
		func(n *engine.Node) {
			n.Name = m.name
			m.place(n)
			w.Fragments[m.name] = n
			w.Scene.Add(n)
			w.finish(i, nil)
		},
		func(err error) { w.finish(i, err) },
	)
}

func (w *World) trackTexture(loader Loader, name, path string) *engine.Texture {
	i := w.addStatus(name, path)
	return loader.LoadTexture(path,
		func(*engine.Texture) { w.finish(i, nil) },
		func(err error) { w.finish(i, err) },
	)
}

// addMirror hangs a downward-facing mirror with a black frame around it.
// Neither casts nor receives shadows.
func (w *World) addMirror(mc config.MirrorConfig, vp Viewport) {
	mirror := engine.NewReflector("mirror", mc.Size, mc.Size, mc.ClipBias, mc.Color.RGBA())
	mirror.Node.Transform.Position = rl.NewVector3(0, mc.Height, 0)
	mirror.Node.Transform.Rotation = rl.NewVector3(180, 0, 0)
	mirror.Resize(vp.Width, vp.Height, vp.PixelRatio)
	w.Mirror = mirror
	w.Scene.AddReflector(mirror)

	t := mc.FrameThickness
	half := mc.Size / 2
	black := engine.NewBasicMaterial(rl.Black)
	long := engine.Box{Width: mc.Size + 2*t, Height: t, Depth: t}
	side := engine.Box{Width: t, Height: t, Depth: mc.Size}

	pieces := []struct {
		name string
		geom engine.Geometry
		pos  rl.Vector3
	}{
		{"frame-top", long, rl.NewVector3(0, mc.Height, half+t/2)},
		{"frame-bottom", long, rl.NewVector3(0, mc.Height, -half-t/2)},
		{"frame-left", side, rl.NewVector3(-half-t/2, mc.Height, 0)},
		{"frame-right", side, rl.NewVector3(half+t/2, mc.Height, 0)},
	}
	for _, p := range pieces {
		n := engine.NewMesh(p.name, p.geom, black)
		n.Transform.Position = p.pos
		w.Frame = append(w.Frame, n)
		w.Scene.Add(n)
	}
}

// addRing places the sprite-sheet plane facing +Z.
func (w *World) addRing(sc config.SpriteConfig, tex *engine.Texture) {
	mat := engine.NewBasicMaterial(rl.White)
	mat.Map = tex
	mat.Transparent = true

	ring := engine.NewMesh("ring", engine.Plane{Width: sc.Size, Length: sc.Size}, mat)
	ring.Transform.Position = sc.Position.Vector3()
	ring.Transform.Rotation = rl.NewVector3(90, 0, 0)
	ring.CastShadow = true
	ring.ReceiveShadow = true
	w.Ring = ring
	w.Scene.Add(ring)

	w.animator = sprite.New(tex, sc.Frames)
}

// Animator returns the ring's sprite animator.
func (w *World) Animator() *sprite.Animator {
	return w.animator
}

// Start runs the ring animation until ctx is cancelled or Stop is called.
func (w *World) Start(ctx context.Context) {
	if w.task != nil {
		return
	}
	w.task = w.animator.Start(ctx, w.period)
}

// Stop halts the ring animation and waits for it to exit.
func (w *World) Stop() {
	if w.task == nil {
		return
	}
	w.task.Stop()
	w.task = nil
}

// Status returns a snapshot of every requested asset in request order.
func (w *World) Status() []AssetStatus {
	out := make([]AssetStatus, len(w.status))
	copy(out, w.status)
	return out
}

// Resize reallocates the mirror's render-target size for a new viewport.
func (w *World) Resize(vp Viewport) {
	w.Mirror.Resize(vp.Width, vp.Height, vp.PixelRatio)
}
