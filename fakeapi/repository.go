package fakeapi

import (
	"canvas-templates/core"
	"fmt"
	"sync"
)

// repository holds the templates of the fake upstream in id order.
type repository struct {
	mu        sync.RWMutex
	nextID    int64
	templates []core.Template
	previews  map[string]preview
}

type preview struct {
	contentType string
	data        []byte
}

func newRepository() *repository {
	return &repository{
		nextID:   1,
		previews: make(map[string]preview),
	}
}

func (r *repository) list() []core.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Template, len(r.templates))
	copy(out, r.templates)
	return out
}

func (r *repository) get(id int64) (core.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Template{}, fmt.Errorf("template with id %d not found", id)
}

// insert assigns the next id unless tpl already has one.
func (r *repository) insert(tpl core.Template) core.Template {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tpl.ID == 0 {
		tpl.ID = r.nextID
	}
	if tpl.ID >= r.nextID {
		r.nextID = tpl.ID + 1
	}
	r.templates = append(r.templates, tpl)
	return tpl
}

func (r *repository) update(id int64, fn func(*core.Template)) (core.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.templates {
		if r.templates[i].ID == id {
			fn(&r.templates[i])
			return r.templates[i], nil
		}
	}
	return core.Template{}, fmt.Errorf("template with id %d not found", id)
}

func (r *repository) delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.templates {
		if t.ID == id {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("template with id %d not found", id)
}

func (r *repository) putPreview(name string, p preview) {
	r.mu.Lock()
	r.previews[name] = p
	r.mu.Unlock()
}

func (r *repository) preview(name string) (preview, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.previews[name]
	return p, ok
}
