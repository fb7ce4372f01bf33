// Package preview turns locally selected files into revocable preview
// handles, the terminal counterpart of browser object URLs.
package preview

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Scheme prefixes every preview URL.
const Scheme = "preview://"

// File is a locally selected file that has not been uploaded.
type File struct {
	Name        string
	Path        string // empty when the bytes did not come from disk
	Content     []byte
	ContentType string
}

// Size returns the content length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Content))
}

// LoadFile reads path into a File, sniffing its content type.
func LoadFile(path string) (File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return File{
		Name:        filepath.Base(path),
		Path:        path,
		Content:     content,
		ContentType: http.DetectContentType(content),
	}, nil
}

// Registry holds the files behind live preview URLs.
type Registry struct {
	mu      sync.Mutex
	live    map[string]File
	revoked map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		live:    make(map[string]File),
		revoked: make(map[string]int),
	}
}

// Create registers file under a fresh URL and returns the owning handle.
func (r *Registry) Create(file File) *Handle {
	url := Scheme + uuid.NewString()
	r.mu.Lock()
	r.live[url] = file
	r.mu.Unlock()
	return &Handle{url: url, registry: r}
}

// Open returns the file behind a live URL.
func (r *Registry) Open(url string) (File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.live[url]
	return file, ok
}

// Live returns the number of URLs not yet revoked.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// IsLive reports whether url is still registered.
func (r *Registry) IsLive(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[url]
	return ok
}

// Revocations returns how many times url was revoked. A correct owner
// revokes each URL exactly once.
func (r *Registry) Revocations(url string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked[url]
}

func (r *Registry) revoke(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, url)
	r.revoked[url]++
}

// Handle owns one preview URL until released.
type Handle struct {
	url      string
	registry *Registry
	once     sync.Once
}

// URL returns the preview URL.
func (h *Handle) URL() string {
	return h.url
}

// Release revokes the URL. Only the first call has an effect.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.registry.revoke(h.url)
	})
}
