// Package config holds the viewer's tunables. Every field has a default so the
// scene file is optional; values present in the file override the defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded config fails validation.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window WindowConfig `yaml:"window"`
	Camera CameraConfig `yaml:"camera"`
	Panel  PanelConfig  `yaml:"panel"`
	Fog    FogConfig    `yaml:"fog"`
	Light  LightConfig  `yaml:"light"`
	Assets AssetConfig  `yaml:"assets"`
	Mirror MirrorConfig `yaml:"mirror"`
	Sprite SpriteConfig `yaml:"sprite"`
}

type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int32  `yaml:"width"`
	Height     int32  `yaml:"height"`
	TargetFPS  int32  `yaml:"target_fps"`
	MSAA       bool   `yaml:"msaa"`
	Background Color  `yaml:"background"`
}

type CameraConfig struct {
	FOV         float32 `yaml:"fov"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Position    Vec3    `yaml:"position"`
	Target      Vec3    `yaml:"target"`
	Damping     float32 `yaml:"damping"`
	RotateSpeed float32 `yaml:"rotate_speed"`
	ZoomSpeed   float32 `yaml:"zoom_speed"`
	PanSpeed    float32 `yaml:"pan_speed"`
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`
	ResetTime   float32 `yaml:"reset_seconds"`
}

// Range is an inclusive [Min, Max] slider range.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

type PanelConfig struct {
	Visible bool  `yaml:"visible"`
	X       Range `yaml:"x"`
	Y       Range `yaml:"y"`
	Z       Range `yaml:"z"`
}

type FogConfig struct {
	Color Color   `yaml:"color"`
	Near  float32 `yaml:"near"`
	Far   float32 `yaml:"far"`
}

type LightConfig struct {
	Ambient      Color   `yaml:"ambient"`
	Color        Color   `yaml:"color"`
	Intensity    float32 `yaml:"intensity"`
	Position     Vec3    `yaml:"position"`
	ShadowMap    int32   `yaml:"shadow_map"`
	ShadowExtent float32 `yaml:"shadow_extent"`
	ShadowNear   float32 `yaml:"shadow_near"`
	ShadowFar    float32 `yaml:"shadow_far"`
	ShadowBias   float32 `yaml:"shadow_bias"`
}

type AssetConfig struct {
	Root    string `yaml:"root"`
	Shaders string `yaml:"shaders"`
	River   string `yaml:"river"`
	Bridge  string `yaml:"bridge"`
	Skybox  string `yaml:"skybox"`
	Sprites string `yaml:"sprites"`
	Workers int    `yaml:"workers"`
}

type MirrorConfig struct {
	Size           float32 `yaml:"size"`
	Height         float32 `yaml:"height"`
	ClipBias       float32 `yaml:"clip_bias"`
	Color          Color   `yaml:"color"`
	FrameThickness float32 `yaml:"frame_thickness"`
}

type SpriteConfig struct {
	Frames   int           `yaml:"frames"`
	Interval time.Duration `yaml:"interval"`
	Position Vec3          `yaml:"position"`
	Size     float32       `yaml:"size"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:      "River Scene",
			Width:      1280,
			Height:     720,
			TargetFPS:  60,
			MSAA:       true,
			Background: Color(rl.NewColor(0x33, 0x33, 0x33, 255)),
		},
		Camera: CameraConfig{
			FOV:         35,
			Near:        1,
			Far:         4000,
			Position:    Vec3{-20, 20, 100},
			Target:      Vec3{0, 10, 0},
			Damping:     0.05,
			RotateSpeed: 1,
			ZoomSpeed:   1,
			PanSpeed:    1,
			MinDistance: 5,
			MaxDistance: 2000,
			ResetTime:   0.6,
		},
		Panel: PanelConfig{
			Visible: true,
			X:       Range{Min: -100, Max: 100},
			Y:       Range{Min: 0, Max: 100},
			Z:       Range{Min: -100, Max: 100},
		},
		Fog: FogConfig{
			Color: Color(rl.NewColor(0x33, 0x33, 0x33, 255)),
			Near:  2000,
			Far:   4000,
		},
		Light: LightConfig{
			Ambient:      Color(rl.NewColor(0x33, 0x33, 0x33, 255)),
			Color:        Color(rl.White),
			Intensity:    1,
			Position:     Vec3{-200, 200, -400},
			ShadowMap:    4096,
			ShadowExtent: 300,
			ShadowNear:   0.1,
			ShadowFar:    1000,
			ShadowBias:   -0.001,
		},
		Assets: AssetConfig{
			Root:    ".",
			Shaders: "assets/shaders",
			River:   "model/river/scene.gltf",
			Bridge:  "model/bridge/scene.gltf",
			Skybox:  "model/skybox/scene.gltf",
			Sprites: "img/sprites.png",
			Workers: 2,
		},
		Mirror: MirrorConfig{
			Size:           50,
			Height:         60,
			ClipBias:       0.003,
			Color:          Color(rl.NewColor(0x88, 0x99, 0x99, 255)),
			FrameThickness: 2,
		},
		Sprite: SpriteConfig{
			Frames:   8,
			Interval: 100 * time.Millisecond,
			Position: Vec3{50, 22, -55},
			Size:     10,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera fov %v", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera clip %v..%v", c.Camera.Near, c.Camera.Far)
	check(c.Camera.Damping >= 0 && c.Camera.Damping <= 1, "camera damping %v", c.Camera.Damping)
	check(c.Camera.MinDistance > 0 && c.Camera.MaxDistance > c.Camera.MinDistance,
		"camera distance %v..%v", c.Camera.MinDistance, c.Camera.MaxDistance)
	for name, r := range map[string]Range{"x": c.Panel.X, "y": c.Panel.Y, "z": c.Panel.Z} {
		check(r.Max > r.Min, "panel %s range %v..%v", name, r.Min, r.Max)
	}
	check(c.Fog.Far > c.Fog.Near, "fog %v..%v", c.Fog.Near, c.Fog.Far)
	check(c.Light.ShadowMap > 0, "shadow map %d", c.Light.ShadowMap)
	check(c.Light.ShadowExtent > 0, "shadow extent %v", c.Light.ShadowExtent)
	check(c.Light.ShadowFar > c.Light.ShadowNear, "shadow clip %v..%v", c.Light.ShadowNear, c.Light.ShadowFar)
	check(c.Assets.Workers > 0, "asset workers %d", c.Assets.Workers)
	check(c.Mirror.Size > 0 && c.Mirror.FrameThickness > 0, "mirror %v frame %v", c.Mirror.Size, c.Mirror.FrameThickness)
	check(c.Sprite.Frames > 0, "sprite frames %d", c.Sprite.Frames)
	check(c.Sprite.Interval > 0, "sprite interval %v", c.Sprite.Interval)

	return errors.Join(errs...)
}

// Vec3 is written as a three-element YAML sequence.
type Vec3 [3]float32

func (v Vec3) Vector3() rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// Color is written as "#rrggbb" or "#rrggbbaa".
type Color rl.Color

func (c Color) RGBA() rl.Color {
	return rl.Color(c)
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = Color(parsed)
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa"; the leading '#' is optional.
func ParseColor(s string) (rl.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return rl.Color{}, fmt.Errorf("invalid color format: %s", s)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}

	var out [4]uint8
	out[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return rl.Color{}, fmt.Errorf("invalid color %s: %w", s, err)
		}
		out[i] = v
	}
	return rl.NewColor(out[0], out[1], out[2], out[3]), nil
}
