package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"riverscene/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	// ErrClosed is reported for requests made after Close.
	ErrClosed = errors.New("assets: loader closed")
	// ErrInvalidModel means the file decoded but produced no usable meshes.
	ErrInvalidModel = errors.New("assets: invalid model")
	// ErrInvalidTexture means the image decoded but could not be uploaded.
	ErrInvalidTexture = errors.New("assets: invalid texture")
)

type kind int

const (
	kindModel kind = iota
	kindTexture
)

type request struct {
	kind    kind
	path    string
	onModel func(*engine.Node)
	onError func(error)
	texture *textureEntry
}

type result struct {
	req   request
	model *ModelData
	image *ImageData
	err   error
}

type textureEntry struct {
	tex     *engine.Texture
	done    bool
	err     error
	waiters []textureWaiter
}

type textureWaiter struct {
	onLoad  func(*engine.Texture)
	onError func(error)
	// silent waiters leave failure reporting to other requests for the path.
	silent bool
}

type Options struct {
	// Root is prepended to every relative asset path.
	Root string
	// Workers bounds how many decodes run at once.
	Workers int
}

// Loader runs asset decoding on background goroutines and hands the results
// back to the goroutine that calls Poll. GPU upload and every onLoad/onError
// callback happen inside Poll, so callers that only mutate the scene from
// their callbacks never race the renderer.
type Loader struct {
	backend Backend
	root    string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	sem    chan struct{}

	results chan result

	mu       sync.Mutex
	closed   bool
	pending  int
	textures map[string]*textureEntry
	deferred []func()
	models   []*engine.Model
}

func NewLoader(backend Backend, opts Options) *Loader {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		backend:  backend,
		root:     opts.Root,
		ctx:      ctx,
		cancel:   cancel,
		sem:      make(chan struct{}, workers),
		results:  make(chan result, 16),
		textures: make(map[string]*textureEntry),
	}
}

func (l *Loader) resolve(path string) string {
	if l.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}

// LoadModel requests a model. Exactly one of onLoad or onError is called from
// a later Poll. There is no retry and no timeout.
func (l *Loader) LoadModel(path string, onLoad func(*engine.Node), onError func(error)) {
	req := request{kind: kindModel, path: path, onModel: onLoad, onError: onError}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending++
	if l.closed {
		l.deferred = append(l.deferred, func() {
			l.fail(req, fmt.Errorf("load model %q: %w", path, ErrClosed))
		})
		return
	}
	l.start(req)
}

// LoadTexture returns a handle for path right away; the image is attached to it
// when the load completes. Requests for the same path share one handle and one
// decode. Callbacks are delivered from Poll, even when the texture is already loaded.
func (l *Loader) LoadTexture(path string, onLoad func(*engine.Texture), onError func(error)) *engine.Texture {
	return l.loadTexture(path, textureWaiter{onLoad: onLoad, onError: onError})
}

// Texture returns the shared handle for path. A failed load is not reported
// here; callers that need to know use LoadTexture with an onError callback.
func (l *Loader) Texture(path string) *engine.Texture {
	return l.loadTexture(path, textureWaiter{silent: true})
}

func (l *Loader) loadTexture(path string, waiter textureWaiter) *engine.Texture {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending++

	if entry, ok := l.textures[path]; ok {
		if entry.done {
			l.deferred = append(l.deferred, func() { l.notify(path, entry, waiter) })
		} else {
			entry.waiters = append(entry.waiters, waiter)
		}
		return entry.tex
	}

	entry := &textureEntry{tex: engine.NewTexture(path), waiters: []textureWaiter{waiter}}
	l.textures[path] = entry
	if l.closed {
		entry.done = true
		entry.err = fmt.Errorf("load texture %q: %w", path, ErrClosed)
		l.deferred = append(l.deferred, func() { l.finishTexture(path, entry) })
		return entry.tex
	}
	l.start(request{kind: kindTexture, path: path, texture: entry})
	return entry.tex
}

// start launches the decode goroutine. Caller holds l.mu.
func (l *Loader) start(req request) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		select {
		case l.sem <- struct{}{}:
		case <-l.ctx.Done():
			return
		}
		res := l.decode(req)
		<-l.sem

		select {
		case l.results <- res:
		case <-l.ctx.Done():
			l.release(res)
		}
	}()
}

// release frees the CPU side of a result that will not be delivered.
func (l *Loader) release(res result) {
	if res.image != nil {
		l.backend.ReleaseImage(res.image)
	}
}

func (l *Loader) decode(req request) result {
	res := result{req: req}
	full := l.resolve(req.path)
	switch req.kind {
	case kindModel:
		res.model, res.err = l.backend.DecodeModel(full)
	case kindTexture:
		res.image, res.err = l.backend.DecodeImage(full)
	}
	return res
}

// Poll uploads every finished decode and runs its callbacks on the calling
// goroutine. It never blocks and returns the number of requests completed.
func (l *Loader) Poll() int {
	l.mu.Lock()
	deferred := l.deferred
	l.deferred = nil
	l.mu.Unlock()

	for _, fn := range deferred {
		fn()
	}
	n := len(deferred)

	for {
		select {
		case res := <-l.results:
			n += l.complete(res)
		default:
			return n
		}
	}
}

func (l *Loader) complete(res result) int {
	switch res.req.kind {
	case kindModel:
		if res.err != nil {
			l.fail(res.req, fmt.Errorf("load model %q: %w", res.req.path, res.err))
			return 1
		}
		node, model, err := l.backend.UploadModel(res.model)
		if err != nil {
			l.fail(res.req, fmt.Errorf("load model %q: %w", res.req.path, err))
			return 1
		}
		l.mu.Lock()
		l.models = append(l.models, model)
		l.pending--
		l.mu.Unlock()
		if res.req.onModel != nil {
			res.req.onModel(node)
		}
		return 1

	case kindTexture:
		entry := res.req.texture
		if res.err == nil {
			var handle rl.Texture2D
			handle, res.err = l.backend.UploadTexture(res.image)
			if res.err == nil {
				entry.tex.Bind(handle)
			}
		}
		l.mu.Lock()
		entry.done = true
		if res.err != nil {
			entry.err = fmt.Errorf("load texture %q: %w", res.req.path, res.err)
		}
		l.mu.Unlock()
		return l.finishTexture(res.req.path, entry)
	}
	return 0
}

func (l *Loader) finishTexture(path string, entry *textureEntry) int {
	l.mu.Lock()
	waiters := entry.waiters
	entry.waiters = nil
	l.mu.Unlock()

	for _, w := range waiters {
		l.notify(path, entry, w)
	}
	return len(waiters)
}

func (l *Loader) notify(path string, entry *textureEntry, w textureWaiter) {
	l.mu.Lock()
	l.pending--
	err := entry.err
	l.mu.Unlock()

	if err != nil {
		switch {
		case w.onError != nil:
			w.onError(err)
		case !w.silent:
			slog.Error("texture load failed", "path", path, "err", err)
		}
		return
	}
	if w.onLoad != nil {
		w.onLoad(entry.tex)
	}
}

func (l *Loader) fail(req request, err error) {
	l.mu.Lock()
	l.pending--
	l.mu.Unlock()

	if req.onError != nil {
		req.onError(err)
		return
	}
	slog.Error("asset load failed", "path", req.path, "err", err)
}

// Pending is the number of requests whose callbacks have not run yet.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Flush polls until nothing is pending or ctx is done.
func (l *Loader) Flush(ctx context.Context) error {
	for {
		l.Poll()
		if l.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// Close stops the workers. Decodes still in flight or not yet polled are
// dropped and their callbacks never run; requests made afterwards fail with
// ErrClosed.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()

	for {
		select {
		case res := <-l.results:
			l.release(res)
		default:
			return
		}
	}
}

// Unload releases every uploaded model and texture. Call on the render
// goroutine after Close.
func (l *Loader) Unload() {
	l.mu.Lock()
	models := l.models
	l.models = nil
	textures := l.textures
	l.textures = make(map[string]*textureEntry)
	l.mu.Unlock()

	for _, m := range models {
		l.backend.UnloadModel(m)
	}
	for _, entry := range textures {
		if handle, ok := entry.tex.Handle(); ok {
			l.backend.UnloadTexture(handle)
		}
	}
}
