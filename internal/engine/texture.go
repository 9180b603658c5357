package engine

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
)

// Texture is a handle to an image that may still be loading. Tiling state
// (wrap, offset, repeat) can be changed from any goroutine.
type Texture struct {
	Path string

	mu     sync.RWMutex
	handle rl.Texture2D
	ready  bool
	wrapS  WrapMode
	wrapT  WrapMode
	offset rl.Vector2
	repeat rl.Vector2
}

func NewTexture(path string) *Texture {
	return &Texture{
		Path:   path,
		repeat: rl.Vector2{X: 1, Y: 1},
	}
}

// Bind attaches the uploaded GPU texture. Called on the render goroutine.
func (t *Texture) Bind(handle rl.Texture2D) {
	t.mu.Lock()
	t.handle = handle
	t.ready = true
	t.mu.Unlock()
}

// Handle returns the GPU texture and whether it has been uploaded.
func (t *Texture) Handle() (rl.Texture2D, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.handle, t.ready
}

func (t *Texture) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}

func (t *Texture) SetWrap(s, w WrapMode) {
	t.mu.Lock()
	t.wrapS, t.wrapT = s, w
	t.mu.Unlock()
}

func (t *Texture) Wrap() (s, w WrapMode) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.wrapS, t.wrapT
}

func (t *Texture) SetOffset(x, y float32) {
	t.mu.Lock()
	t.offset = rl.Vector2{X: x, Y: y}
	t.mu.Unlock()
}

func (t *Texture) Offset() rl.Vector2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.offset
}

func (t *Texture) SetRepeat(x, y float32) {
	t.mu.Lock()
	t.repeat = rl.Vector2{X: x, Y: y}
	t.mu.Unlock()
}

func (t *Texture) Repeat() rl.Vector2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.repeat
}

// TileUV maps a mesh texture coordinate through offset and repeat. Offsets
// and repeats count from the bottom row of the image, while uploaded images
// keep their top row at v = 0, so the tiling is applied with v flipped. With
// repeat (1, 1) and a zero offset uv is returned unchanged. The lighting
// vertex shader does the same.
func (t *Texture) TileUV(uv rl.Vector2) rl.Vector2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return rl.Vector2{
		X: uv.X*t.repeat.X + t.offset.X,
		Y: 1 - ((1-uv.Y)*t.repeat.Y + t.offset.Y),
	}
}

// Tiling returns offset and repeat packed as (offset.x, offset.y, repeat.x, repeat.y)
// for the uvTransform shader uniform, read under one lock.
func (t *Texture) Tiling() []float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return []float32{t.offset.X, t.offset.Y, t.repeat.X, t.repeat.Y}
}
