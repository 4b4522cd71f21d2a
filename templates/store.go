package templates

import (
	"bytes"
	"canvas-templates/api"
	"canvas-templates/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

const CollectionPath = "/api/v1/canvas_templates"

type (
	// Status is the UI-facing state of one group of operations.
	Status struct {
		Loading bool   `json:"loading"`
		Error   string `json:"error,omitempty"`
	}

	scope struct {
		inflight int
		err      string
	}

	// Store caches the template collection and keeps it consistent with
	// the server's responses. The cache is only changed after the server
	// confirms an operation.
	//
	// Create reports through its own status so a failed create never hides
	// a good listing. Fetch, update and delete share the list status.
	Store struct {
		client *api.Client
		tokens api.TokenSource

		mu        sync.RWMutex
		templates []core.Template
		list      scope
		create    scope
	}
)

// NewStore creates an empty store. Multipart requests authenticate with
// tokens directly; JSON requests go through client, which should be bound
// to the same token source.
func NewStore(client *api.Client, tokens api.TokenSource) *Store {
	if tokens == nil {
		tokens = client.Tokens()
	}
	return &Store{
		client:    client,
		tokens:    tokens,
		templates: []core.Template{},
	}
}

// Templates returns a copy of the cached collection.
func (s *Store) Templates() []core.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.templates)
}

func (s *Store) ListStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Loading: s.list.inflight > 0, Error: s.list.err}
}

func (s *Store) CreateStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Loading: s.create.inflight > 0, Error: s.create.err}
}

func (s *Store) start(sc *scope) {
	s.mu.Lock()
	sc.inflight++
	sc.err = ""
	s.mu.Unlock()
}

// finish closes an operation started with start. On success apply runs
// under the same lock, so the cache and the status change together.
func (s *Store) finish(sc *scope, op string, err error, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc.inflight--
	if err != nil {
		sc.err = message(err)
		return &OpError{Op: op, Err: err}
	}
	if apply != nil {
		apply()
	}
	return nil
}

func (s *Store) collectionURL() string {
	return s.client.URL(CollectionPath)
}

func (s *Store) itemURL(id int64) string {
	return fmt.Sprintf("%s/%d", s.collectionURL(), id)
}

// FetchAll replaces the cache with the server's collection. On failure the
// previous cache is kept.
func (s *Store) FetchAll(ctx context.Context) (list []core.Template, err error) {
	s.start(&s.list)
	defer func() {
		err = s.finish(&s.list, OpFetch, err, func() {
			s.templates = slices.Clone(list)
		})
		if err != nil {
			list = nil
		}
	}()

	list, err = s.fetch(ctx)
	if err == nil {
		logrus.WithField("count", len(list)).Info("Fetched templates")
	}
	return list, err
}

func (s *Store) fetch(ctx context.Context) ([]core.Template, error) {
	resp, err := s.client.Do(ctx, s.collectionURL(), api.Options{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp.StatusCode) {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var list []core.Template
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if list == nil {
		list = []core.Template{}
	}
	return list, nil
}

// Create posts draft and puts the created template at the front of the cache.
func (s *Store) Create(ctx context.Context, draft core.TemplateDraft) (tpl core.Template, err error) {
	s.start(&s.create)
	defer func() {
		err = s.finish(&s.create, OpCreate, err, func() {
			s.templates = prepend(s.templates, tpl)
		})
	}()

	if draft.Name == "" {
		return tpl, ErrNameRequired
	}

	tpl, err = s.submit(ctx, s.collectionURL(), draft, 0)
	s.resyncAfter(ctx, OpCreate, err)
	if err == nil {
		logrus.WithField("template_id", tpl.ID).Info("Template created")
	}
	return tpl, err
}

// Update sends draft with a PATCH method override and replaces the cached
// entry with the server's copy. A template missing from the cache stays
// missing.
func (s *Store) Update(ctx context.Context, id int64, draft core.TemplateDraft) (tpl core.Template, err error) {
	s.start(&s.list)
	defer func() {
		err = s.finish(&s.list, OpUpdate, err, func() {
			s.templates = replace(s.templates, id, tpl)
		})
	}()

	if id <= 0 {
		return tpl, ErrInvalidID
	}
	if draft.Name == "" {
		return tpl, ErrNameRequired
	}

	tpl, err = s.submit(ctx, s.itemURL(id)+"?_method=PATCH", draft, id)
	s.resyncAfter(ctx, OpUpdate, err)
	if err == nil {
		logrus.WithField("template_id", id).Info("Template updated")
	}
	return tpl, err
}

// Delete removes a template. The id goes in the JSON body, not the path.
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	s.start(&s.list)
	defer func() {
		err = s.finish(&s.list, OpDelete, err, func() {
			s.templates = remove(s.templates, id)
		})
	}()

	body, err := json.Marshal(map[string]int64{"id": id})
	if err != nil {
		return err
	}

	resp, err := s.client.Do(ctx, s.collectionURL(), api.Options{
		Method: http.MethodDelete,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp.StatusCode) {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	logrus.WithField("template_id", id).Info("Template deleted")
	return nil
}

// GetByID fetches a single template. It neither consults nor changes the
// cache, and leaves both statuses alone.
func (s *Store) GetByID(ctx context.Context, id int64) (core.Template, error) {
	tpl, err := s.get(ctx, id)
	if err != nil {
		return core.Template{}, &OpError{Op: OpGet, Err: err}
	}
	return tpl, nil
}

func (s *Store) get(ctx context.Context, id int64) (core.Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.itemURL(id), nil)
	if err != nil {
		return core.Template{}, err
	}
	req.Header.Set("Accept", "application/json")
	s.authorize(req)

	return s.roundTrip(req)
}

func (s *Store) submit(ctx context.Context, url string, draft core.TemplateDraft, id int64) (core.Template, error) {
	body, contentType, err := encodeDraft(draft, id)
	if err != nil {
		return core.Template{}, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return core.Template{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	s.authorize(req)

	return s.roundTrip(req)
}

func (s *Store) authorize(req *http.Request) {
	if s.tokens == nil {
		return
	}
	if token, ok := s.tokens.Token(); ok {
		api.Authorize(req, token)
	}
}

func (s *Store) roundTrip(req *http.Request) (core.Template, error) {
	resp, err := s.client.Send(req)
	if err != nil {
		return core.Template{}, err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp.StatusCode) {
		return core.Template{}, &StatusError{StatusCode: resp.StatusCode}
	}

	var tpl core.Template
	if err := json.NewDecoder(resp.Body).Decode(&tpl); err != nil {
		return core.Template{}, &DecodeError{Err: err}
	}
	return tpl, nil
}

// resyncAfter reloads the collection when the server accepted a write but
// its response could not be read, since the cache can no longer be patched.
// The list status is left alone.
func (s *Store) resyncAfter(ctx context.Context, op string, err error) {
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		return
	}

	log := logrus.WithField("op", op)
	list, err := s.fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to resync templates")
		return
	}

	s.mu.Lock()
	s.templates = list
	s.mu.Unlock()
	log.WithField("count", len(list)).Info("Resynced templates after unreadable response")
}

func prepend(list []core.Template, tpl core.Template) []core.Template {
	out := make([]core.Template, 0, len(list)+1)
	out = append(out, tpl)
	for _, t := range list {
		if t.ID != tpl.ID {
			out = append(out, t)
		}
	}
	return out
}

func replace(list []core.Template, id int64, tpl core.Template) []core.Template {
	i := slices.IndexFunc(list, func(t core.Template) bool { return t.ID == id })
	if i < 0 {
		return list
	}
	out := slices.Clone(list)
	out[i] = tpl
	return out
}

func remove(list []core.Template, id int64) []core.Template {
	out := make([]core.Template, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
