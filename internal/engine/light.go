package engine

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type AmbientLight struct {
	Color     rl.Color
	Intensity float32
}

// ColorVec returns the ambient term scaled by intensity.
func (a AmbientLight) ColorVec() []float32 {
	return []float32{
		float32(a.Color.R) / 255.0 * a.Intensity,
		float32(a.Color.G) / 255.0 * a.Intensity,
		float32(a.Color.B) / 255.0 * a.Intensity,
		1.0,
	}
}

// ShadowParams is the orthographic box the shadow map covers, in light space.
type ShadowParams struct {
	MapSize int32
	Left    float32
	Right   float32
	Top     float32
	Bottom  float32
	Near    float32
	Far     float32
	Bias    float32
}

// DirectionalLight shines from Position toward Target with no attenuation.
type DirectionalLight struct {
	Position   rl.Vector3
	Target     rl.Vector3
	Color      rl.Color
	Intensity  float32
	CastShadow bool
	Shadow     ShadowParams
}

func NewDirectionalLight(position rl.Vector3, color rl.Color, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Shadow: ShadowParams{
			MapSize: 512,
			Left:    -5,
			Right:   5,
			Top:     5,
			Bottom:  -5,
			Near:    0.5,
			Far:     500,
		},
	}
}

// Direction is the normalized direction light travels in.
func (l *DirectionalLight) Direction() rl.Vector3 {
	return rl.Vector3Normalize(rl.Vector3Subtract(l.Target, l.Position))
}

func (l *DirectionalLight) ColorVec() []float32 {
	return []float32{
		float32(l.Color.R) / 255.0 * l.Intensity,
		float32(l.Color.G) / 255.0 * l.Intensity,
		float32(l.Color.B) / 255.0 * l.Intensity,
		1.0,
	}
}

// ShadowCamera is the camera the shadow pass renders from.
func (l *DirectionalLight) ShadowCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   l.Position,
		Target:     l.Target,
		Up:         l.lightCameraUp(),
		Fovy:       l.Shadow.Top - l.Shadow.Bottom,
		Projection: rl.CameraOrthographic,
	}
}

func (l *DirectionalLight) ShadowView() rl.Matrix {
	return rl.MatrixLookAt(l.Position, l.Target, l.lightCameraUp())
}

func (l *DirectionalLight) ShadowProjection() rl.Matrix {
	s := l.Shadow
	return rl.MatrixOrtho(s.Left, s.Right, s.Bottom, s.Top, s.Near, s.Far)
}

func (l *DirectionalLight) lightCameraUp() rl.Vector3 {
	if math.Abs(float64(l.Direction().Y)) > 0.9 {
		return rl.Vector3{X: 0, Y: 0, Z: 1}
	}
	return rl.Vector3{X: 0, Y: 1, Z: 0}
}

// Fog fades geometry linearly into Color between Near and Far.
type Fog struct {
	Color rl.Color
	Near  float32
	Far   float32
}

// Factor returns how much of the fog color replaces the surface color at distance d.
func (f Fog) Factor(d float32) float32 {
	if f.Far <= f.Near {
		return 0
	}
	t := (d - f.Near) / (f.Far - f.Near)
	return min(max(t, 0), 1)
}

func (f Fog) ColorVec() []float32 {
	return []float32{
		float32(f.Color.R) / 255.0,
		float32(f.Color.G) / 255.0,
		float32(f.Color.B) / 255.0,
		1.0,
	}
}
