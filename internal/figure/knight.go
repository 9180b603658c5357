// Package figure builds the knight and sword out of primitive meshes.
package figure

import (
	"riverscene/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// MailleTexture is used as both color map and normal map on the knight's body and armor.
const MailleTexture = "img/maille.jpg"

const segments = 8

// TextureSource hands out shared texture handles by path.
type TextureSource interface {
	Texture(path string) *engine.Texture
}

// Knight returns a new knight group: body, armor, helmet and a sword, all
// casting and receiving shadows. The group itself sits at the origin.
func Knight(textures TextureSource) *engine.Node {
	knight := engine.NewNode("knight")

	maille := textures.Texture(MailleTexture)

	bodyMat := engine.NewStandardMaterial(rl.White, 1.0, 0.5)
	bodyMat.Map = maille
	bodyMat.NormalMap = maille
	body := engine.NewMesh("body", engine.Box{Width: 10, Height: 20, Depth: 5}, bodyMat)
	body.Transform.Position = rl.NewVector3(0, 10, 0)
	knight.AddChild(body)

	armorMat := engine.NewStandardMaterial(rl.White, 1.0, 0.3)
	armorMat.Map = maille
	armorMat.NormalMap = maille
	armor := engine.NewMesh("armor", engine.Box{Width: 10, Height: 10, Depth: 3}, armorMat)
	armor.Transform.Position = rl.NewVector3(0, 20, 0)
	knight.AddChild(armor)

	helmet := engine.NewMesh("helmet",
		engine.Cylinder{RadiusTop: 3, RadiusBottom: 3, Height: 5, Segments: segments},
		engine.NewPhongMaterial(engine.ColorHex(0x888888), 50))
	helmet.Transform.Position = rl.NewVector3(0, 25, 0)
	knight.AddChild(helmet)

	sword := Sword()
	sword.Transform.Position = rl.NewVector3(5, 12, 0)
	knight.AddChild(sword)

	knight.SetShadows(true, true)
	return knight
}

// Sword returns a sword group whose four parts share one translucent material.
func Sword() *engine.Node {
	sword := engine.NewNode("sword")

	steel := engine.NewPhongMaterial(engine.ColorHex(0x888888), 30)
	steel.Specular = engine.ColorHex(0x222222)
	steel.Transparent = true
	steel.Opacity = 0.8

	parts := []struct {
		name string
		geom engine.Geometry
		y    float32
	}{
		{"blade", engine.Cylinder{RadiusTop: 0.5, RadiusBottom: 0.2, Height: 25, Segments: segments}, 12.5},
		{"tip", engine.Cone{Radius: 0.1, Height: 2, Segments: segments}, 25},
		{"guard", engine.Box{Width: 1, Height: 1, Depth: 1}, 6},
		{"handle", engine.Cylinder{RadiusTop: 0.3, RadiusBottom: 0.3, Height: 5, Segments: segments}, 3},
	}
	for _, p := range parts {
		mesh := engine.NewMesh(p.name, p.geom, steel)
		mesh.Transform.Position.Y = p.y
		sword.AddChild(mesh)
	}

	sword.SetShadows(true, true)
	return sword
}
