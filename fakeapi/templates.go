package fakeapi

import (
	"canvas-templates/core"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const maxFormMemory = 10 << 20

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.repo.list())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	tpl, err := s.repo.get(id)
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"message": "Template not found"})
		return
	}
	render.JSON(w, r, tpl)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"message": "Expected a multipart form"})
		return
	}

	name := r.PostFormValue("name")
	if name == "" {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]string{"message": "The name field is required."})
		return
	}

	fields, err := s.readForm(r)
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]string{"message": err.Error()})
		return
	}

	by := s.actor(r)
	stamp := s.now().UTC().Format(time.RFC3339)
	tpl := core.Template{
		CreatedAt: stamp,
		UpdatedAt: stamp,
		CreatedBy: by,
		UpdatedBy: by,
	}
	fields.apply(&tpl)

	tpl = s.repo.insert(tpl)
	logrus.WithField("template_id", tpl.ID).Info("Fake API created template")

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tpl)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"message": "Expected a multipart form"})
		return
	}

	if formID := r.PostFormValue("id"); formID != "" && formID != strconv.FormatInt(id, 10) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]string{"message": "The id field does not match the URL."})
		return
	}

	if _, err := s.repo.get(id); err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"message": "Template not found"})
		return
	}

	fields, err := s.readForm(r)
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]string{"message": err.Error()})
		return
	}

	by := s.actor(r)
	stamp := s.now().UTC().Format(time.RFC3339)
	tpl, err := s.repo.update(id, func(t *core.Template) {
		fields.apply(t)
		t.UpdatedAt = stamp
		t.UpdatedBy = by
	})
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"message": "Template not found"})
		return
	}

	logrus.WithField("template_id", id).Info("Fake API updated template")
	render.JSON(w, r, tpl)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID int64 `json:"id"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil || body.ID == 0 {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]string{"message": "The id field is required."})
		return
	}

	if err := s.repo.delete(body.ID); err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"message": "Template not found"})
		return
	}

	logrus.WithField("template_id", body.ID).Info("Fake API deleted template")
	render.JSON(w, r, map[string]string{"message": "Template deleted"})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	p, ok := s.repo.preview(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", p.contentType)
	w.Write(p.data)
}

type formFields struct {
	values  map[string][]string
	preview string
}

// readForm extracts the template fields from a parsed multipart form and
// stores an uploaded preview image.
func (s *Server) readForm(r *http.Request) (formFields, error) {
	fields := formFields{values: r.MultipartForm.Value}

	files := r.MultipartForm.File["preview_image"]
	if len(files) == 0 {
		return fields, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return fields, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fields, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(fh.Filename))
	}
	name := strings.ToLower(ulid.Make().String()) + path.Ext(fh.Filename)
	s.repo.putPreview(name, preview{contentType: contentType, data: data})
	fields.preview = baseURL(r) + "/storage/previews/" + name
	return fields, nil
}

// apply copies the submitted fields onto tpl. Fields absent from the form
// are left as they are.
func (f formFields) apply(tpl *core.Template) {
	if v, ok := f.values["name"]; ok && v[0] != "" {
		tpl.Name = v[0]
	}
	if v, ok := f.values["description"]; ok {
		tpl.Description = v[0]
	}
	if v, ok := f.values["width"]; ok {
		tpl.Width = core.Dimension(v[0])
	}
	if v, ok := f.values["height"]; ok {
		tpl.Height = core.Dimension(v[0])
	}
	if v, ok := f.values["type"]; ok {
		tpl.Type = v[0]
	}
	if v, ok := f.values["tags[]"]; ok {
		tpl.Tags = append([]string(nil), v...)
	}
	if f.preview != "" {
		tpl.PreviewImage = f.preview
	}
}

func (s *Server) actor(r *http.Request) string {
	if claims := claimsFrom(r); claims != nil {
		return claims.Email
	}
	return ""
}

func templateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"message": "Template not found"})
		return 0, false
	}
	return id, true
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
