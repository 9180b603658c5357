package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"riverscene/internal/assets"
	"riverscene/internal/camera"
	"riverscene/internal/config"
	"riverscene/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Loader is the asset loader as the game drives it: the scene requests
// through it and the frame loop polls it.
type Loader interface {
	world.Loader
	Poller
}

type Options struct {
	// ConfigPath is watched for edits when Watch is set.
	ConfigPath string
	Watch      bool

	// Width and Height override the configured window size when positive,
	// including in reloaded configs.
	Width, Height int32
}

type Game struct {
	cfg  config.Config
	opts Options

	World    *world.World
	Renderer *world.Renderer
	Orbit    *camera.Orbit
	Panel    *Panel
	Driver   *Driver

	input      camera.Input
	pixelRatio float32
	updates    <-chan config.Config
}

func New(cfg config.Config, opts Options) *Game {
	return &Game{
		cfg:        opts.override(cfg),
		opts:       opts,
		Renderer:   world.NewRenderer(),
		input:      camera.RaylibInput{},
		pixelRatio: 1,
	}
}

func (o Options) override(cfg config.Config) config.Config {
	if o.Width > 0 {
		cfg.Window.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Window.Height = o.Height
	}
	return cfg
}

func cameraParams(c config.CameraConfig) camera.Params {
	return camera.Params{
		Position:    c.Position.Vector3(),
		Target:      c.Target.Vector3(),
		FOV:         c.FOV,
		Near:        c.Near,
		Far:         c.Far,
		Damping:     c.Damping,
		RotateSpeed: c.RotateSpeed,
		ZoomSpeed:   c.ZoomSpeed,
		PanSpeed:    c.PanSpeed,
		MinDistance: c.MinDistance,
		MaxDistance: c.MaxDistance,
	}
}

// setup builds the scene, camera, panel and driver. It makes no GL calls, so
// tests can run it without a window.
func (g *Game) setup(loader Loader, clock Clock, width, height int32) {
	g.World = world.Build(g.cfg, loader, world.Viewport{Width: width, Height: height, PixelRatio: g.pixelRatio})
	g.Orbit = camera.NewOrbit(cameraParams(g.cfg.Camera), g.input)

	g.Panel = NewPanel(g.cfg.Panel.Visible)
	g.Panel.Bind("X", &g.Orbit.Position.X, g.cfg.Panel.X.Min, g.cfg.Panel.X.Max)
	g.Panel.Bind("Y", &g.Orbit.Position.Y, g.cfg.Panel.Y.Min, g.cfg.Panel.Y.Max)
	g.Panel.Bind("Z", &g.Orbit.Position.Z, g.cfg.Panel.Z.Min, g.cfg.Panel.Z.Max)
	g.Panel.BindToggle("Shadow map", &g.Renderer.ShowShadowMap)

	g.Renderer.Overlay = g.drawOverlay
	g.Driver = NewDriver(clock, loader, g.Orbit, g.render)
	g.Resize(width, height)
}

// Run opens the window and drives frames until the window closes or ctx is
// cancelled.
func (g *Game) Run(ctx context.Context) error {
	flags := uint32(rl.FlagWindowResizable | rl.FlagWindowHighdpi)
	if g.cfg.Window.MSAA {
		flags |= rl.FlagMsaa4xHint
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(g.cfg.Window.Width, g.cfg.Window.Height, g.cfg.Window.Title)
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return errors.New("game: window init failed")
	}
	rl.SetTargetFPS(g.cfg.Window.TargetFPS)

	g.Renderer.Initialize(g.cfg.Assets.Shaders, g.cfg.Light.ShadowMap)
	defer g.Renderer.Unload()

	loader := assets.NewLoader(assets.NewRaylib(), assets.Options{
		Root:    g.cfg.Assets.Root,
		Workers: g.cfg.Assets.Workers,
	})
	defer func() {
		loader.Close()
		loader.Unload()
	}()

	g.pixelRatio = rl.GetWindowScaleDPI().X
	if g.pixelRatio <= 0 {
		g.pixelRatio = 1
	}
	g.setup(loader, time.Now, int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	initPanelStyle()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.World.Start(ctx)
	defer g.World.Stop()

	if g.opts.Watch && g.opts.ConfigPath != "" {
		w, err := config.Watch(g.opts.ConfigPath)
		if err != nil {
			slog.Warn("config watch disabled", "path", g.opts.ConfigPath, "err", err)
		} else {
			defer w.Close()
			g.updates = w.Updates
		}
	}

	slog.Info("scene started", "width", rl.GetScreenWidth(), "height", rl.GetScreenHeight(), "dpi", g.pixelRatio)
	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			break
		}
		g.frame()
	}
	slog.Info("scene stopped", "frames", g.Driver.Frames())
	return nil
}

// frame handles window events and input, then ticks the driver once.
func (g *Game) frame() {
	if rl.IsWindowResized() {
		g.Resize(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	}

	select {
	case cfg, ok := <-g.updates:
		if ok {
			g.ApplyConfig(cfg)
		}
	default:
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Orbit.Reset(g.cfg.Camera.ResetTime)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.Panel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		g.Renderer.ShowShadowMap = !g.Renderer.ShowShadowMap
	}

	pressed := rl.IsMouseButtonPressed(rl.MouseButtonLeft) || rl.IsMouseButtonPressed(rl.MouseButtonRight)
	down := rl.IsMouseButtonDown(rl.MouseButtonLeft) || rl.IsMouseButtonDown(rl.MouseButtonRight)
	g.Orbit.Enabled = !g.Panel.Captures(rl.GetMousePosition(), pressed, down, len(g.World.Status()))

	g.Driver.Tick()
}

func (g *Game) render() {
	g.Renderer.Render(g.World.Scene, world.View{
		Camera:     g.Orbit.Camera3D(),
		Projection: g.Orbit.Projection(),
	})
}

func (g *Game) drawOverlay() {
	g.Panel.Draw(g.World.Status(), rl.GetFPS())

	if g.Renderer.ShowShadowMap {
		t := g.Renderer.Timings
		text := fmt.Sprintf("shadow %v  reflection %v  draw %v  drawn %d  culled %d",
			t.Shadow.Round(time.Microsecond), t.Reflection.Round(time.Microsecond), t.Draw.Round(time.Microsecond),
			g.Renderer.Stats.Drawn, g.Renderer.Stats.Culled)
		_, h := g.Renderer.Surface.Size()
		rl.DrawText(text, panelPadding, h-24, 14, colorTextSecondary)
	}
}

// Resize updates everything that depends on the viewport size: the camera
// aspect, the renderer surface and the mirror's render target.
func (g *Game) Resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	g.Orbit.SetViewport(width, height)
	g.Renderer.Surface.SetSize(width, height)
	g.World.Resize(world.Viewport{Width: width, Height: height, PixelRatio: g.pixelRatio})
	slog.Debug("viewport resized", "width", width, "height", height)
}

// ApplyConfig takes a reloaded config. Camera tuning, fog, lighting colors
// and panel ranges change live; window and asset settings need a restart.
func (g *Game) ApplyConfig(cfg config.Config) {
	cfg = g.opts.override(cfg)
	if cfg.Assets != g.cfg.Assets || cfg.Window.Width != g.cfg.Window.Width ||
		cfg.Window.Height != g.cfg.Window.Height || cfg.Light.ShadowMap != g.cfg.Light.ShadowMap {
		slog.Info("window, asset and shadow map settings apply on restart")
	}

	g.Orbit.SetParams(cameraParams(cfg.Camera))

	s := g.World.Scene
	s.Background = cfg.Window.Background.RGBA()
	s.Fog.Color = cfg.Fog.Color.RGBA()
	s.Fog.Near, s.Fog.Far = cfg.Fog.Near, cfg.Fog.Far
	s.Ambient.Color = cfg.Light.Ambient.RGBA()
	if s.Sun != nil {
		s.Sun.Color = cfg.Light.Color.RGBA()
		s.Sun.Intensity = cfg.Light.Intensity
	}

	g.Panel.SetRange("X", cfg.Panel.X.Min, cfg.Panel.X.Max)
	g.Panel.SetRange("Y", cfg.Panel.Y.Min, cfg.Panel.Y.Max)
	g.Panel.SetRange("Z", cfg.Panel.Z.Min, cfg.Panel.Z.Max)

	g.cfg = cfg
}
