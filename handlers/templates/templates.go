package templates

import (
	"canvas-templates/core"
	tpl "canvas-templates/templates"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	Store interface {
		Templates() []core.Template
		ListStatus() tpl.Status
		CreateStatus() tpl.Status
		FetchAll(ctx context.Context) ([]core.Template, error)
		GetByID(ctx context.Context, id int64) (core.Template, error)
		Create(ctx context.Context, draft core.TemplateDraft) (core.Template, error)
		Update(ctx context.Context, id int64, draft core.TemplateDraft) (core.Template, error)
		Delete(ctx context.Context, id int64) error
	}

	ListResponse struct {
		Templates    []core.Template `json:"templates"`
		Status       tpl.Status      `json:"status"`
		CreateStatus tpl.Status      `json:"createStatus"`
	}
)

func listResponse(store Store) ListResponse {
	return ListResponse{
		Templates:    store.Templates(),
		Status:       store.ListStatus(),
		CreateStatus: store.CreateStatus(),
	}
}

// HandleList returns the cached collection without contacting the server.
func HandleList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, listResponse(store))
	}
}

// HandleRefresh reloads the collection from the server.
func HandleRefresh(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.FetchAll(r.Context()); err != nil {
			logrus.WithError(err).Warn("Failed to refresh templates")
			render.Status(r, statusFor(err))
		}
		render.JSON(w, r, listResponse(store))
	}
}

func HandleGet(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := templateID(w, r)
		if !ok {
			return
		}

		t, err := store.GetByID(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"template_id": id,
			}).Warn("Failed to get template")
			renderError(w, r, err)
			return
		}
		render.JSON(w, r, t)
	}
}

func HandleCreate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := draftFromRequest(r)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		t, err := store.Create(r.Context(), draft)
		if err != nil {
			logrus.WithError(err).Warn("Failed to create template")
			renderError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, t)
	}
}

func HandleUpdate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := templateID(w, r)
		if !ok {
			return
		}

		draft, err := draftFromRequest(r)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		t, err := store.Update(r.Context(), id, draft)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"template_id": id,
			}).Warn("Failed to update template")
			renderError(w, r, err)
			return
		}
		render.JSON(w, r, t)
	}
}

func HandleDelete(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := templateID(w, r)
		if !ok {
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"template_id": id,
			}).Warn("Failed to delete template")
			renderError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func templateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Template id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// statusFor maps a store error to the facade's response status. Upstream
// client errors pass through; everything else is a bad gateway.
func statusFor(err error) int {
	if errors.Is(err, tpl.ErrNameRequired) || errors.Is(err, tpl.ErrInvalidID) {
		return http.StatusBadRequest
	}
	var statusErr *tpl.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
		return statusErr.StatusCode
	}
	return http.StatusBadGateway
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	var opErr *tpl.OpError
	if errors.As(err, &opErr) {
		msg = opErr.Err.Error()
	}
	render.Status(r, statusFor(err))
	render.JSON(w, r, map[string]string{"error": msg})
}
