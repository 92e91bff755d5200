package loader

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/db47h/ofs"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Carmen-Shannon/plat4rs-go/common"
)

// ResourceDir is the name of the resource directory searched next to the executable and in the
// working directory.
const ResourceDir = "resources"

// ErrClosed is returned by Preload once the loader has been closed.
var ErrClosed = errors.New("loader closed")

// errorList collects per-file errors from a Preload.
type errorList map[string]error

func (e errorList) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(e[name].Error())
	}
	return sb.String()
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	roots   []string
	fs      ofs.FileSystem
	workers int
	pool    worker.DynamicWorkerPool
	closed  bool

	cache map[string][]byte
}

// Loader resolves resource names (slash separated, relative to a resource root) to bytes, text, or
// decoded textures, and caches raw file contents by name.
type Loader interface {
	// LoadString reads a resource as UTF-8 text.
	//
	// Parameters:
	//   - name: the resource name, e.g. "shaders/scene.wgsl"
	//
	// Returns:
	//   - string: the file contents
	//   - error: error if the resource is missing or unreadable
	LoadString(name string) (string, error)

	// LoadBinary reads a resource as raw bytes. The result is cached; callers get their own copy.
	//
	// Parameters:
	//   - name: the resource name
	//
	// Returns:
	//   - []byte: the file contents
	//   - error: error if the resource is missing or unreadable
	LoadBinary(name string) ([]byte, error)

	// LoadTexture decodes a PNG, JPEG, BMP, or WebP resource into tightly packed RGBA rows.
	//
	// Parameters:
	//   - name: the resource name
	//
	// Returns:
	//   - common.TextureStagingData: the decoded pixels
	//   - error: error if the resource is missing or cannot be decoded
	LoadTexture(name string) (common.TextureStagingData, error)

	// Preload reads resources concurrently into the cache.
	//
	// Parameters:
	//   - names: the resources to read
	//
	// Returns:
	//   - error: nil, or an error listing every resource that failed
	Preload(names ...string) error

	// Cached reports whether a resource's bytes are cached.
	Cached(name string) bool

	// Discard drops a resource from the cache.
	Discard(name string)

	// Roots returns the resource directories in the order they were added to the overlay.
	Roots() []string

	// Close stops the Preload workers. Cached and direct loads keep working; Preload returns
	// ErrClosed. Closing twice is a no-op.
	Close()
}

var _ Loader = &loader{}

// DefaultRoots returns the resource directory next to the executable followed by the one in the
// working directory.
//
// Returns:
//   - []string: candidate resource directories
func DefaultRoots() []string {
	roots := make([]string, 0, 2)
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Join(filepath.Dir(exe), ResourceDir))
	}
	return append(roots, ResourceDir)
}

// NewLoader creates a Loader over an overlay of the configured resource roots.
// Roots that do not exist are skipped.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
//   - error: error if a root cannot be added to the overlay
func NewLoader(options ...LoaderBuilderOption) (Loader, error) {
	l := &loader{
		workers: 4,
		cache:   make(map[string][]byte),
	}
	for _, option := range options {
		option(l)
	}

	if l.fs == nil {
		if len(l.roots) == 0 {
			l.roots = DefaultRoots()
		}
		ovl := &ofs.Overlay{}
		if err := ovl.Add(false, l.roots...); err != nil {
			return nil, errors.Wrapf(err, "add resource roots %v", l.roots)
		}
		l.fs = ovl
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	common.Logger().Debug("loader created", "roots", l.roots, "workers", l.workers)
	return l, nil
}

func (l *loader) LoadString(name string) (string, error) {
	data, err := l.LoadBinary(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *loader) LoadBinary(name string) ([]byte, error) {
	name = cleanName(name)

	l.mu.RLock()
	if cached, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return bytes.Clone(cached), nil
	}
	l.mu.RUnlock()

	data, err := l.read(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = data
	l.mu.Unlock()

	common.Logger().Debug("resource loaded", "name", name, "bytes", len(data))
	return bytes.Clone(data), nil
}

func (l *loader) LoadTexture(name string) (common.TextureStagingData, error) {
	data, err := l.LoadBinary(name)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return common.TextureStagingData{}, errors.Wrapf(err, "decode texture %s", name)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	common.Logger().Debug("texture decoded", "name", name, "format", format, "width", b.Dx(), "height", b.Dy())
	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
	}, nil
}

func (l *loader) Preload(names ...string) error {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = errorList{}
	)
	for i, name := range names {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				_, err := l.LoadBinary(name)
				if err != nil {
					mu.Lock()
					errs[name] = err
					mu.Unlock()
				}
				return nil, err
			},
		})
	}
	wg.Wait()

	if len(errs) > 0 {
		return errors.Wrapf(errs, "preload %d of %d resources failed", len(errs), len(names))
	}
	return nil
}

func (l *loader) Cached(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[cleanName(name)]
	return ok
}

func (l *loader) Discard(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, cleanName(name))
}

func (l *loader) Roots() []string {
	return append([]string(nil), l.roots...)
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
	common.Logger().Debug("loader closed")
}

// read opens name on the overlay and reads it fully.
func (l *loader) read(name string) ([]byte, error) {
	f, err := l.fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open resource %s", name)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read resource %s", name)
	}
	return data, nil
}

// cleanName normalizes a resource name to a slash separated path without a leading slash.
func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
}
