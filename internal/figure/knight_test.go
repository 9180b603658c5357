package figure

import (
	"testing"

	"riverscene/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textureCache struct {
	requests []string
	handles  map[string]*engine.Texture
}

func (c *textureCache) Texture(path string) *engine.Texture {
	c.requests = append(c.requests, path)
	if c.handles == nil {
		c.handles = map[string]*engine.Texture{}
	}
	if tex, ok := c.handles[path]; ok {
		return tex
	}
	tex := engine.NewTexture(path)
	c.handles[path] = tex
	return tex
}

func localTransforms(root *engine.Node) map[string]engine.Transform {
	out := map[string]engine.Transform{}
	root.Traverse(func(n *engine.Node) { out[n.Name] = n.Transform })
	return out
}

func TestKnightIsDeterministic(t *testing.T) {
	a := Knight(&textureCache{})
	b := Knight(&textureCache{})
	assert.Equal(t, localTransforms(a), localTransforms(b))
}

func TestKnightLayout(t *testing.T) {
	knight := Knight(&textureCache{})

	want := map[string]rl.Vector3{
		"body":   {X: 0, Y: 10, Z: 0},
		"armor":  {X: 0, Y: 20, Z: 0},
		"helmet": {X: 0, Y: 25, Z: 0},
		"sword":  {X: 5, Y: 12, Z: 0},
	}
	for name, pos := range want {
		n := knight.Find(name)
		require.NotNil(t, n, name)
		assert.Equal(t, pos, n.Transform.Position, name)
		assert.Same(t, knight, n.Parent, name)
	}

	assert.Equal(t, engine.Box{Width: 10, Height: 20, Depth: 5}, knight.Find("body").Renderable.Geometry)
	assert.Equal(t, engine.Box{Width: 10, Height: 10, Depth: 3}, knight.Find("armor").Renderable.Geometry)
	assert.Equal(t, engine.Cylinder{RadiusTop: 3, RadiusBottom: 3, Height: 5, Segments: 8}, knight.Find("helmet").Renderable.Geometry)
}

func TestKnightMaterials(t *testing.T) {
	cache := &textureCache{}
	knight := Knight(cache)

	body := knight.Find("body").Renderable.Material
	armor := knight.Find("armor").Renderable.Material
	helmet := knight.Find("helmet").Renderable.Material

	assert.Equal(t, engine.MaterialStandard, body.Kind)
	assert.Equal(t, float32(1), body.Metalness)
	assert.Equal(t, float32(0.5), body.Roughness)
	assert.Equal(t, float32(0.3), armor.Roughness)
	assert.NotSame(t, body, armor)

	// One texture handle serves as map and normal map on both parts.
	require.NotNil(t, body.Map)
	assert.Same(t, body.Map, body.NormalMap)
	assert.Same(t, body.Map, armor.Map)
	assert.Equal(t, MailleTexture, body.Map.Path)
	assert.Equal(t, []string{MailleTexture}, cache.requests)

	assert.Equal(t, engine.MaterialPhong, helmet.Kind)
	assert.Equal(t, engine.ColorHex(0x888888), helmet.Color)
	assert.Equal(t, float32(50), helmet.Shininess)
}

func TestKnightCastsAndReceivesShadows(t *testing.T) {
	meshes := 0
	Knight(&textureCache{}).Traverse(func(n *engine.Node) {
		if !n.IsMesh() {
			return
		}
		meshes++
		assert.True(t, n.CastShadow, n.Name)
		assert.True(t, n.ReceiveShadow, n.Name)
	})
	assert.Equal(t, 7, meshes)
}

func TestSwordSharesOneMaterial(t *testing.T) {
	sword := Sword()
	require.Len(t, sword.Children, 4)

	steel := sword.Children[0].Renderable.Material
	for _, part := range sword.Children {
		assert.Same(t, steel, part.Renderable.Material, part.Name)
	}

	assert.Equal(t, engine.MaterialPhong, steel.Kind)
	assert.Equal(t, engine.ColorHex(0x222222), steel.Specular)
	assert.Equal(t, float32(30), steel.Shininess)
	assert.True(t, steel.IsTransparent())
	assert.Equal(t, float32(0.8), steel.Alpha())

	// Mutating the shared material shows up on every part.
	steel.Opacity = 0.5
	assert.Equal(t, float32(0.5), sword.Find("handle").Renderable.Material.Alpha())
}

func TestSwordParts(t *testing.T) {
	sword := Sword()

	heights := map[string]float32{"blade": 12.5, "tip": 25, "guard": 6, "handle": 3}
	for name, y := range heights {
		n := sword.Find(name)
		require.NotNil(t, n, name)
		assert.Equal(t, y, n.Transform.Position.Y, name)
	}

	blade := sword.Find("blade").Renderable.Geometry.(engine.Cylinder)
	assert.Equal(t, float32(0.5), blade.RadiusTop)
	assert.Equal(t, float32(0.2), blade.RadiusBottom)
	assert.True(t, blade.Tapered())
	assert.Equal(t, engine.Cone{Radius: 0.1, Height: 2, Segments: 8}, sword.Find("tip").Renderable.Geometry)
}
