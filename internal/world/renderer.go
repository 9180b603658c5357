package world

import (
	"cmp"
	"log/slog"
	"path/filepath"
	"slices"
	"time"
	"unsafe"

	"riverscene/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// shadowSlot is the texture unit the shadow map stays bound to during the
// lit passes; DrawMesh only touches the material map units below it.
const shadowSlot = int32(10)

// Surface is the size of the drawable area in screen units.
type Surface struct {
	width  int32
	height int32
}

func (s *Surface) SetSize(width, height int32) {
	s.width, s.height = width, height
}

func (s *Surface) Size() (width, height int32) {
	return s.width, s.height
}

// View is what the scene is rendered from.
type View struct {
	Camera     rl.Camera3D
	Projection rl.Matrix
}

func (v View) Matrix() rl.Matrix {
	return rl.MatrixLookAt(v.Camera.Position, v.Camera.Target, v.Camera.Up)
}

// Timings are the CPU-side durations of the last frame's passes.
type Timings struct {
	Shadow     time.Duration
	Reflection time.Duration
	Draw       time.Duration
}

// Stats counts what the last main pass drew.
type Stats struct {
	Drawn  int
	Culled int
}

type lightingLocs struct {
	lightDir, lightColor, ambient, viewPos int32
	matLightVP, shadowMap, shadowBias      int32
	shadowMapSize                          int32
	shadingModel, metalness, roughness     int32
	shininess, specularColor               int32
	useNormalMap, receiveShadow            int32
	uvTransform                            int32
	fogColor, fogNear, fogFar              int32
	clipEnabled, clipPlane                 int32
}

type reflectorLocs struct {
	mirrorVP, viewPos         int32
	fogColor, fogNear, fogFar int32
}

type Renderer struct {
	Surface Surface

	// ShowShadowMap draws the shadow depth buffer in the top-right corner.
	ShowShadowMap bool

	// Overlay runs after the 3D passes, inside the frame, for 2D UI.
	Overlay func()

	Timings Timings
	Stats   Stats

	lighting  rl.Shader
	reflector rl.Shader
	lit       rl.Material
	mirror    rl.Material
	depth     rl.Material

	shadowMap  rl.RenderTexture2D
	shadowSize int32
	matLightVP rl.Matrix
	reflection rl.RenderTexture2D

	locs       lightingLocs
	mirrorLocs reflectorLocs
	meshes     *meshCache
	white      rl.Texture2D
}

func NewRenderer() *Renderer {
	return &Renderer{meshes: newMeshCache()}
}

// Initialize loads shaders and GPU targets. Call after the window exists.
func (r *Renderer) Initialize(shaderDir string, shadowSize int32) {
	r.lighting = rl.LoadShader(filepath.Join(shaderDir, "lighting.vs"), filepath.Join(shaderDir, "lighting.fs"))
	r.reflector = rl.LoadShader(filepath.Join(shaderDir, "reflector.vs"), filepath.Join(shaderDir, "reflector.fs"))
	if !rl.IsShaderValid(r.lighting) || !rl.IsShaderValid(r.reflector) {
		slog.Error("shader load failed, falling back to defaults", "dir", shaderDir)
	}

	// Normal map goes to texture1; nothing samples the specular map.
	locs := unsafe.Slice(r.lighting.Locs, rl.ShaderLocMapNormal+1)
	locs[rl.ShaderLocMapNormal] = rl.GetShaderLocation(r.lighting, "texture1")
	locs[rl.ShaderLocMapSpecular] = -1

	loc := func(s rl.Shader, name string) int32 { return rl.GetShaderLocation(s, name) }
	r.locs = lightingLocs{
		lightDir:      loc(r.lighting, "lightDir"),
		lightColor:    loc(r.lighting, "lightColor"),
		ambient:       loc(r.lighting, "ambient"),
		viewPos:       loc(r.lighting, "viewPos"),
		matLightVP:    loc(r.lighting, "matLightVP"),
		shadowMap:     loc(r.lighting, "shadowMap"),
		shadowBias:    loc(r.lighting, "shadowBias"),
		shadowMapSize: loc(r.lighting, "shadowMapSize"),
		shadingModel:  loc(r.lighting, "shadingModel"),
		metalness:     loc(r.lighting, "metalness"),
		roughness:     loc(r.lighting, "roughness"),
		shininess:     loc(r.lighting, "shininess"),
		specularColor: loc(r.lighting, "specularColor"),
		useNormalMap:  loc(r.lighting, "useNormalMap"),
		receiveShadow: loc(r.lighting, "receiveShadow"),
		uvTransform:   loc(r.lighting, "uvTransform"),
		fogColor:      loc(r.lighting, "fogColor"),
		fogNear:       loc(r.lighting, "fogNear"),
		fogFar:        loc(r.lighting, "fogFar"),
		clipEnabled:   loc(r.lighting, "clipEnabled"),
		clipPlane:     loc(r.lighting, "clipPlane"),
	}
	r.mirrorLocs = reflectorLocs{
		mirrorVP: loc(r.reflector, "mirrorVP"),
		viewPos:  loc(r.reflector, "viewPos"),
		fogColor: loc(r.reflector, "fogColor"),
		fogNear:  loc(r.reflector, "fogNear"),
		fogFar:   loc(r.reflector, "fogFar"),
	}

	r.depth = rl.LoadMaterialDefault()
	r.lit = rl.LoadMaterialDefault()
	r.lit.Shader = r.lighting
	r.mirror = rl.LoadMaterialDefault()
	r.mirror.Shader = r.reflector
	r.white = materialMaps(r.lit)[rl.MapAlbedo].Texture

	r.shadowSize = shadowSize
	r.shadowMap = loadShadowmapRenderTexture(shadowSize, shadowSize)
	rl.SetShaderValue(r.lighting, r.locs.shadowMapSize, []float32{float32(shadowSize)}, rl.ShaderUniformFloat)
}

func materialMaps(m rl.Material) []rl.MaterialMap {
	return unsafe.Slice(m.Maps, rl.MapNormal+1)
}

// Render draws one frame: shadow map, mirror reflections, then the scene and
// the overlay to the screen.
func (r *Renderer) Render(scene *engine.Scene, view View) {
	meshes := scene.Meshes()
	r.applyEnvironment(scene)

	start := time.Now()
	r.drawShadowMap(scene, meshes)
	r.Timings.Shadow = time.Since(start)

	start = time.Now()
	for _, mirror := range scene.Reflectors {
		r.drawReflection(scene, mirror, meshes, view)
	}
	r.Timings.Reflection = time.Since(start)

	start = time.Now()
	rl.BeginDrawing()
	rl.ClearBackground(scene.Background)

	rl.BeginMode3D(view.Camera)
	rl.SetMatrixProjection(view.Projection)
	r.setViewPos(view.Camera.Position)
	r.bindShadowMap()
	r.drawMain(meshes, view)
	r.unbindShadowMap()
	rl.EndMode3D()
	r.Timings.Draw = time.Since(start)

	if r.ShowShadowMap {
		r.drawShadowPreview()
	}
	if r.Overlay != nil {
		r.Overlay()
	}
	rl.EndDrawing()
}

func (r *Renderer) applyEnvironment(scene *engine.Scene) {
	fog := engine.Fog{Color: scene.Background, Near: 1e9, Far: 1e9 + 1}
	if scene.Fog != nil {
		fog = *scene.Fog
	}
	fogColor := fog.ColorVec()[:3]
	rl.SetShaderValue(r.lighting, r.locs.fogColor, fogColor, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.lighting, r.locs.fogNear, []float32{fog.Near}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.fogFar, []float32{fog.Far}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.reflector, r.mirrorLocs.fogColor, fogColor, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.reflector, r.mirrorLocs.fogNear, []float32{fog.Near}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.reflector, r.mirrorLocs.fogFar, []float32{fog.Far}, rl.ShaderUniformFloat)

	rl.SetShaderValue(r.lighting, r.locs.ambient, scene.Ambient.ColorVec(), rl.ShaderUniformVec4)

	if sun := scene.Sun; sun != nil {
		dir := sun.Direction()
		rl.SetShaderValue(r.lighting, r.locs.lightDir, []float32{dir.X, dir.Y, dir.Z}, rl.ShaderUniformVec3)
		rl.SetShaderValue(r.lighting, r.locs.lightColor, sun.ColorVec(), rl.ShaderUniformVec4)
		rl.SetShaderValue(r.lighting, r.locs.shadowBias, []float32{sun.Shadow.Bias}, rl.ShaderUniformFloat)
	} else {
		rl.SetShaderValue(r.lighting, r.locs.lightColor, []float32{0, 0, 0, 1}, rl.ShaderUniformVec4)
	}
}

func (r *Renderer) setViewPos(pos rl.Vector3) {
	v := []float32{pos.X, pos.Y, pos.Z}
	rl.SetShaderValue(r.lighting, r.locs.viewPos, v, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.reflector, r.mirrorLocs.viewPos, v, rl.ShaderUniformVec3)
}

func (r *Renderer) drawShadowMap(scene *engine.Scene, meshes []*engine.Node) {
	sun := scene.Sun
	rl.BeginTextureMode(r.shadowMap)
	rl.ClearBackground(rl.White)
	if sun == nil || !sun.CastShadow {
		rl.EndTextureMode()
		r.matLightVP = rl.MatrixIdentity()
		return
	}

	rl.BeginMode3D(sun.ShadowCamera())
	rl.SetMatrixProjection(sun.ShadowProjection())
	lightView := rl.GetMatrixModelview()
	lightProj := rl.GetMatrixProjection()

	rl.DisableBackfaceCulling()
	for _, n := range meshes {
		if !n.CastShadow || n.Renderable.Material.Kind == engine.MaterialReflector {
			continue
		}
		if mesh, ok := r.meshes.get(n.Renderable.Geometry); ok {
			rl.DrawMesh(mesh, r.depth, n.WorldMatrix())
		}
	}
	rl.EnableBackfaceCulling()

	rl.EndMode3D()
	rl.EndTextureMode()
	rl.Viewport(0, 0, int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight()))

	r.matLightVP = rl.MatrixMultiply(lightView, lightProj)
	rl.SetShaderValueMatrix(r.lighting, r.locs.matLightVP, r.matLightVP)
}

func (r *Renderer) bindShadowMap() {
	rl.EnableShader(r.lighting.ID)
	rl.ActiveTextureSlot(shadowSlot)
	rl.EnableTexture(r.shadowMap.Depth.ID)
	rl.SetUniform(r.locs.shadowMap, []int32{shadowSlot}, int32(rl.ShaderUniformInt), 1)
	rl.DisableShader()
}

func (r *Renderer) unbindShadowMap() {
	rl.ActiveTextureSlot(shadowSlot)
	rl.DisableTexture()
	rl.ActiveTextureSlot(0)
}

// drawReflection renders the scene mirrored across the reflector's plane into
// the reflection target. Geometry behind the mirror is clipped.
func (r *Renderer) drawReflection(scene *engine.Scene, mirror *engine.Reflector, meshes []*engine.Node, view View) {
	r.ensureReflectionTarget(mirror)
	if !mirror.Node.IsVisible() || !mirror.Facing(view.Camera.Position) {
		return
	}

	mirrored := mirror.MirrorCamera(view.Camera)
	mirrorView := rl.MatrixLookAt(mirrored.Position, mirrored.Target, mirrored.Up)
	rl.SetShaderValueMatrix(r.reflector, r.mirrorLocs.mirrorVP, rl.MatrixMultiply(mirrorView, view.Projection))

	rl.BeginTextureMode(r.reflection)
	rl.ClearBackground(scene.Background)
	rl.BeginMode3D(mirrored)
	rl.SetMatrixProjection(view.Projection)
	r.setViewPos(mirrored.Position)

	rl.SetShaderValue(r.lighting, r.locs.clipEnabled, []float32{1}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.clipPlane, mirror.ClipPlane(), rl.ShaderUniformVec4)
	r.bindShadowMap()

	// The mirrored view flips winding order.
	rl.DisableBackfaceCulling()
	opaque, transparent := r.split(meshes, nil, mirrored.Position)
	for _, n := range opaque {
		r.drawNode(n)
	}
	r.drawTransparent(transparent)
	rl.EnableBackfaceCulling()

	r.unbindShadowMap()
	rl.SetShaderValue(r.lighting, r.locs.clipEnabled, []float32{0}, rl.ShaderUniformFloat)

	rl.EndMode3D()
	rl.EndTextureMode()
	rl.Viewport(0, 0, int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight()))
}

func (r *Renderer) ensureReflectionTarget(mirror *engine.Reflector) {
	w, h := max(mirror.TextureWidth, 1), max(mirror.TextureHeight, 1)
	if r.reflection.ID != 0 && r.reflection.Texture.Width == w && r.reflection.Texture.Height == h {
		return
	}
	if r.reflection.ID != 0 {
		rl.UnloadRenderTexture(r.reflection)
	}
	r.reflection = rl.LoadRenderTexture(w, h)
	rl.SetTextureFilter(r.reflection.Texture, rl.FilterBilinear)
	materialMaps(r.mirror)[rl.MapAlbedo].Texture = r.reflection.Texture
	slog.Debug("reflection target allocated", "width", w, "height", h)
}

func (r *Renderer) drawMain(meshes []*engine.Node, view View) {
	frustum := NewFrustum(view.Matrix(), view.Projection)
	opaque, transparent := r.split(meshes, &frustum, view.Camera.Position)

	for _, n := range opaque {
		if n.Renderable.Material.Kind == engine.MaterialReflector {
			r.drawMirror(n)
			continue
		}
		r.drawNode(n)
	}
	r.drawTransparent(transparent)

	r.Stats.Drawn = len(opaque) + len(transparent)
}

// split separates blended meshes, sorted back to front, from the rest. When
// frustum is set, meshes outside it are dropped and counted. Reflectors are
// only kept when frustum is set and eye is in front of them: the mirror never
// appears in its own reflection and is one-sided.
func (r *Renderer) split(meshes []*engine.Node, frustum *Frustum, eye rl.Vector3) (opaque, transparent []*engine.Node) {
	culled := 0
	for _, n := range meshes {
		mat := n.Renderable.Material
		if mat.Kind == engine.MaterialReflector && (frustum == nil || !engine.FrontFacing(n, eye)) {
			continue
		}
		if frustum != nil {
			center, radius := n.WorldBounds()
			if !frustum.ContainsSphere(center, radius) {
				culled++
				continue
			}
		}
		if mat.IsTransparent() {
			transparent = append(transparent, n)
		} else {
			opaque = append(opaque, n)
		}
	}
	if frustum != nil {
		r.Stats.Culled = culled
	}

	dist := func(n *engine.Node) float32 {
		return rl.Vector3Distance(eye, n.WorldPosition())
	}
	// Stable: equal depths keep tree order.
	slices.SortStableFunc(transparent, func(a, b *engine.Node) int {
		return cmp.Compare(dist(b), dist(a))
	})
	return opaque, transparent
}

func (r *Renderer) drawTransparent(nodes []*engine.Node) {
	rl.DisableDepthMask()
	for _, n := range nodes {
		r.drawNode(n)
	}
	rl.EnableDepthMask()
}

func (r *Renderer) drawNode(n *engine.Node) {
	geom := n.Renderable.Geometry
	mesh, ok := r.meshes.get(geom)
	if !ok {
		return
	}
	mat := n.Renderable.Material

	if mm, isModel := geom.(engine.ModelMesh); isModel {
		r.drawModelMesh(n, mm, mesh)
		return
	}

	shading := float32(0)
	switch mat.Kind {
	case engine.MaterialPhong:
		shading = 1
	case engine.MaterialBasic:
		shading = 2
	}
	r.setSurface(shading, mat, n.ReceiveShadow)

	maps := materialMaps(r.lit)
	maps[rl.MapAlbedo].Color = mat.Color
	maps[rl.MapAlbedo].Color.A = uint8(mat.Alpha() * 255)
	maps[rl.MapAlbedo].Texture = r.bindTexture(mat.Map)
	maps[rl.MapNormal].Texture = rl.Texture2D{}
	if mat.NormalMap != nil {
		if handle, ready := mat.NormalMap.Handle(); ready {
			maps[rl.MapNormal].Texture = handle
		}
	}
	normal := float32(0)
	if maps[rl.MapNormal].Texture.ID != 0 {
		normal = 1
	}
	rl.SetShaderValue(r.lighting, r.locs.useNormalMap, []float32{normal}, rl.ShaderUniformFloat)

	rl.DrawMesh(mesh, r.lit, n.WorldMatrix())
}

// drawModelMesh draws a loaded mesh with its own glTF material under the
// lighting shader.
func (r *Renderer) drawModelMesh(n *engine.Node, mm engine.ModelMesh, mesh rl.Mesh) {
	handle := mm.Model.Handle
	mats := unsafe.Slice(handle.Materials, handle.MaterialCount)
	if mm.MaterialIndex < 0 || mm.MaterialIndex >= len(mats) {
		return
	}
	material := mats[mm.MaterialIndex]
	material.Shader = r.lighting

	r.setSurface(0, n.Renderable.Material, n.ReceiveShadow)
	normal := float32(0)
	if materialMaps(material)[rl.MapNormal].Texture.ID != 0 {
		normal = 1
	}
	rl.SetShaderValue(r.lighting, r.locs.useNormalMap, []float32{normal}, rl.ShaderUniformFloat)

	rl.DisableBackfaceCulling()
	rl.DrawMesh(mesh, material, n.WorldMatrix())
	rl.EnableBackfaceCulling()
}

func (r *Renderer) setSurface(shading float32, mat *engine.Material, receiveShadow bool) {
	receive := float32(0)
	if receiveShadow {
		receive = 1
	}
	spec := []float32{float32(mat.Specular.R) / 255, float32(mat.Specular.G) / 255, float32(mat.Specular.B) / 255}
	tiling := []float32{0, 0, 1, 1}
	if mat.Map != nil {
		tiling = mat.Map.Tiling()
	}

	rl.SetShaderValue(r.lighting, r.locs.shadingModel, []float32{shading}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.metalness, []float32{mat.Metalness}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.roughness, []float32{mat.Roughness}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.shininess, []float32{mat.Shininess}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.specularColor, spec, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.lighting, r.locs.receiveShadow, []float32{receive}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.lighting, r.locs.uvTransform, tiling, rl.ShaderUniformVec4)
}

// bindTexture returns the GPU handle for tex with its wrap mode applied, or
// plain white while it is still loading.
func (r *Renderer) bindTexture(tex *engine.Texture) rl.Texture2D {
	if tex == nil {
		return r.white
	}
	handle, ready := tex.Handle()
	if !ready {
		return r.white
	}
	if s, _ := tex.Wrap(); s == engine.WrapRepeat {
		rl.SetTextureWrap(handle, rl.WrapRepeat)
	} else {
		rl.SetTextureWrap(handle, rl.WrapClamp)
	}
	return handle
}

func (r *Renderer) drawMirror(n *engine.Node) {
	mesh, ok := r.meshes.get(n.Renderable.Geometry)
	if !ok || r.reflection.ID == 0 {
		return
	}
	materialMaps(r.mirror)[rl.MapAlbedo].Color = n.Renderable.Material.Color
	rl.DisableBackfaceCulling()
	rl.DrawMesh(mesh, r.mirror, n.WorldMatrix())
	rl.EnableBackfaceCulling()
}

func (r *Renderer) drawShadowPreview() {
	previewSize := int32(256)
	screenW := int32(rl.GetScreenWidth())
	depth := r.shadowMap.Depth
	rl.DrawTexturePro(
		depth,
		rl.Rectangle{X: 0, Y: 0, Width: float32(depth.Width), Height: float32(-depth.Height)},
		rl.Rectangle{X: float32(screenW - previewSize - 10), Y: 10, Width: float32(previewSize), Height: float32(previewSize)},
		rl.Vector2{},
		0,
		rl.White,
	)
	rl.DrawRectangleLines(screenW-previewSize-10, 10, previewSize, previewSize, rl.Green)
	rl.DrawText("Shadow Map", screenW-previewSize-10, previewSize+15, 16, rl.Green)
}

// Unload releases shaders, render targets and generated meshes. Model meshes
// belong to the asset loader.
func (r *Renderer) Unload() {
	r.meshes.unload()
	rl.UnloadRenderTexture(r.shadowMap)
	if r.reflection.ID != 0 {
		rl.UnloadRenderTexture(r.reflection)
	}
	rl.UnloadShader(r.lighting)
	rl.UnloadShader(r.reflector)
}

// loadShadowmapRenderTexture creates a framebuffer with only a depth attachment.
func loadShadowmapRenderTexture(width, height int32) rl.RenderTexture2D {
	target := rl.RenderTexture2D{}

	target.ID = rl.LoadFramebuffer()
	target.Texture.Width = width
	target.Texture.Height = height

	if target.ID > 0 {
		rl.EnableFramebuffer(target.ID)

		target.Depth.ID = rl.LoadTextureDepth(width, height, false)
		target.Depth.Width = width
		target.Depth.Height = height
		target.Depth.Format = 19
		target.Depth.Mipmaps = 1

		rl.FramebufferAttach(target.ID, target.Depth.ID, rl.AttachmentDepth, rl.AttachmentTexture2d, 0)

		rl.DisableFramebuffer()
	}

	return target
}
