// Package editor tracks documents that connected frontends hold open, so
// daemon-side flows can locate, save and close them on the user's behalf.
package editor

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prefsync/prefsync/internal/utils"
)

// PreviewScheme marks documents generated during conflict resolution.
// The continuation flow keys off this scheme to find the review buffer.
const PreviewScheme = "prefsync-preview"

var (
	ErrNotFound  = errors.New("editor: document not found")
	ErrNoBacking = errors.New("editor: document has no backing file")
)

// Document is one open editor buffer registered with the daemon.
type Document struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Scheme    string    `json:"scheme"`
	Path      string    `json:"path,omitempty"`
	Dirty     bool      `json:"dirty"`
	Content   string    `json:"content,omitempty"`
	OpenedAt  time.Time `json:"opened_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Document) clone() *Document {
	c := *d
	return &c
}

// OpenParams describes a document being registered.
type OpenParams struct {
	URI     string `json:"uri"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	Dirty   bool   `json:"dirty"`
}

// Registry is the daemon-side index of open documents. Lookups by scheme
// walk documents in registration order, so ties resolve deterministically.
type Registry struct {
	mu    sync.RWMutex
	docs  map[string]*Document
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		docs: make(map[string]*Document),
	}
}

func (r *Registry) Open(params *OpenParams) (*Document, error) {
	if params == nil || params.URI == "" {
		return nil, fmt.Errorf("editor: uri is required")
	}

	parsed, err := url.Parse(params.URI)
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("editor: invalid uri %q", params.URI)
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:        uuid.NewString(),
		URI:       params.URI,
		Scheme:    parsed.Scheme,
		Path:      params.Path,
		Dirty:     params.Dirty,
		Content:   params.Content,
		OpenedAt:  now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.docs[doc.ID] = doc
	r.order = append(r.order, doc.ID)
	r.mu.Unlock()

	return doc.clone(), nil
}

func (r *Registry) Get(id string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.clone(), nil
}

// List returns all open documents in registration order.
func (r *Registry) List() []*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.docs[id].clone())
	}
	return docs
}

// FindByScheme returns the oldest open document with the given scheme.
func (r *Registry) FindByScheme(scheme string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if doc := r.docs[id]; doc.Scheme == scheme {
			return doc.clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: scheme %q", ErrNotFound, scheme)
}

// Update replaces a document's buffer content and dirty flag.
func (r *Registry) Update(id string, content string, dirty bool) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	doc.Content = content
	doc.Dirty = dirty
	doc.UpdatedAt = time.Now().UTC()

	return doc.clone(), nil
}

// Save flushes the document's buffer to its backing file and clears the
// dirty flag. Documents without a backing path cannot be saved.
func (r *Registry) Save(id string) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if doc.Path == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoBacking, id)
	}

	if err := utils.AtomicWriteFile(doc.Path, []byte(doc.Content), 0o644); err != nil {
		return nil, fmt.Errorf("editor: save %q: %w", doc.Path, err)
	}

	doc.Dirty = false
	doc.UpdatedAt = time.Now().UTC()

	return doc.clone(), nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(r.docs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.docs)
}
