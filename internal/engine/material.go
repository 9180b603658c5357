package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type MaterialKind int

const (
	// MaterialStandard is metalness/roughness shading.
	MaterialStandard MaterialKind = iota
	// MaterialPhong is specular/shininess shading.
	MaterialPhong
	// MaterialBasic ignores lights.
	MaterialBasic
	// MaterialReflector samples a reflection render target.
	MaterialReflector
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialStandard:
		return "standard"
	case MaterialPhong:
		return "phong"
	case MaterialBasic:
		return "basic"
	case MaterialReflector:
		return "reflector"
	}
	return "unknown"
}

// Material describes surface appearance. Opacity is only honored when
// Transparent is set.
type Material struct {
	Kind        MaterialKind
	Color       rl.Color
	Specular    rl.Color
	Shininess   float32
	Metalness   float32
	Roughness   float32
	Opacity     float32
	Transparent bool
	Map         *Texture
	NormalMap   *Texture
}

func NewStandardMaterial(color rl.Color, metalness, roughness float32) *Material {
	return &Material{
		Kind:      MaterialStandard,
		Color:     color,
		Metalness: metalness,
		Roughness: roughness,
		Opacity:   1,
	}
}

func NewPhongMaterial(color rl.Color, shininess float32) *Material {
	return &Material{
		Kind:      MaterialPhong,
		Color:     color,
		Specular:  rl.NewColor(0x11, 0x11, 0x11, 255),
		Shininess: shininess,
		Opacity:   1,
	}
}

func NewBasicMaterial(color rl.Color) *Material {
	return &Material{
		Kind:    MaterialBasic,
		Color:   color,
		Opacity: 1,
	}
}

// IsTransparent reports whether the material must be blended, which moves
// its meshes to the back-to-front pass.
func (m *Material) IsTransparent() bool {
	return m.Transparent
}

// Alpha is the effective opacity.
func (m *Material) Alpha() float32 {
	if !m.Transparent {
		return 1
	}
	return m.Opacity
}

// ColorVec returns the color as normalized RGBA with the effective opacity.
func (m *Material) ColorVec() []float32 {
	return []float32{
		float32(m.Color.R) / 255.0,
		float32(m.Color.G) / 255.0,
		float32(m.Color.B) / 255.0,
		m.Alpha(),
	}
}

// ColorHex builds an opaque color from 0xRRGGBB.
func ColorHex(hex uint32) rl.Color {
	return rl.NewColor(uint8(hex>>16), uint8(hex>>8), uint8(hex), 255)
}
