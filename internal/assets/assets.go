package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"riverscene/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/qmuntal/gltf"
)

// ModelData is a model that has been read and validated but not yet uploaded.
type ModelData struct {
	Path string
	// MeshNames lists one name per drawable primitive in the order the
	// engine flattens them.
	MeshNames []string
}

// ImageData is a decoded image in CPU memory.
type ImageData struct {
	Path  string
	Image *rl.Image
}

// Backend splits every load into a decode step, run on a worker goroutine and
// never touching the GPU, and an upload step, run on the render goroutine.
type Backend interface {
	DecodeModel(path string) (*ModelData, error)
	UploadModel(data *ModelData) (*engine.Node, *engine.Model, error)
	DecodeImage(path string) (*ImageData, error)
	UploadTexture(data *ImageData) (rl.Texture2D, error)
	// ReleaseImage frees a decoded image that will never be uploaded.
	ReleaseImage(data *ImageData)
	UnloadModel(model *engine.Model)
	UnloadTexture(texture rl.Texture2D)
}

// Raylib loads models and textures through raylib. glTF files are parsed on
// the worker first so broken files fail before any GPU work happens.
type Raylib struct{}

func NewRaylib() *Raylib {
	return &Raylib{}
}

func (Raylib) DecodeModel(path string) (*ModelData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	data := &ModelData{Path: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		doc, err := gltf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("parse gltf: %w", err)
		}
		data.MeshNames = meshNames(doc)
		if len(data.MeshNames) == 0 {
			return nil, fmt.Errorf("%w: no triangle meshes in %s", ErrInvalidModel, path)
		}
	}
	return data, nil
}

// meshNames mirrors raylib's glTF import: nodes in index order, one mesh per
// triangle primitive.
func meshNames(doc *gltf.Document) []string {
	var names []string
	for ni, node := range doc.Nodes {
		if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
			continue
		}
		mesh := doc.Meshes[*node.Mesh]
		base := mesh.Name
		if base == "" {
			base = node.Name
		}
		if base == "" {
			base = fmt.Sprintf("node%d", ni)
		}
		count := 0
		for _, p := range mesh.Primitives {
			if p.Mode == gltf.PrimitiveTriangles {
				count++
			}
		}
		for i := range count {
			if count == 1 {
				names = append(names, base)
			} else {
				names = append(names, fmt.Sprintf("%s_%d", base, i))
			}
		}
	}
	return names
}

func (Raylib) UploadModel(data *ModelData) (*engine.Node, *engine.Model, error) {
	handle := rl.LoadModel(data.Path)
	if !rl.IsModelValid(handle) || handle.MeshCount == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidModel, data.Path)
	}

	model := &engine.Model{Path: data.Path, Handle: handle}
	meshes := unsafe.Slice(handle.Meshes, handle.MeshCount)
	meshMaterial := unsafe.Slice(handle.MeshMaterial, handle.MeshCount)

	names := data.MeshNames
	if len(names) != len(meshes) {
		names = nil
	}

	root := engine.NewNode(filepath.Base(filepath.Dir(data.Path)))
	for i, mesh := range meshes {
		name := fmt.Sprintf("mesh%d", i)
		if names != nil {
			name = names[i]
		}
		geom := engine.ModelMesh{
			Model:         model,
			Index:         i,
			MaterialIndex: int(meshMaterial[i]),
			Box:           rl.GetMeshBoundingBox(mesh),
		}
		root.AddChild(engine.NewMesh(name, geom, engine.NewStandardMaterial(rl.White, 0, 1)))
	}
	return root, model, nil
}

func (Raylib) DecodeImage(path string) (*ImageData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	img := rl.LoadImage(path)
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("%w: cannot decode %s", ErrInvalidTexture, path)
	}
	return &ImageData{Path: path, Image: img}, nil
}

func (Raylib) UploadTexture(data *ImageData) (rl.Texture2D, error) {
	defer rl.UnloadImage(data.Image)

	tex := rl.LoadTextureFromImage(data.Image)
	if tex.ID == 0 {
		return rl.Texture2D{}, fmt.Errorf("%w: upload %s", ErrInvalidTexture, data.Path)
	}
	rl.GenTextureMipmaps(&tex)
	rl.SetTextureFilter(tex, rl.FilterTrilinear)
	return tex, nil
}

func (Raylib) ReleaseImage(data *ImageData) {
	if data.Image != nil {
		rl.UnloadImage(data.Image)
	}
}

func (Raylib) UnloadModel(model *engine.Model) {
	rl.UnloadModel(model.Handle)
}

func (Raylib) UnloadTexture(texture rl.Texture2D) {
	rl.UnloadTexture(texture)
}
