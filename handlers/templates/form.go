package templates

import (
	"canvas-templates/core"
	"fmt"
	"io"
	"net/http"
)

const maxUploadSize = 10 << 20

// draftFromRequest reads a template draft from a multipart or url-encoded
// form, using the same field names as the upstream API.
func draftFromRequest(r *http.Request) (core.TemplateDraft, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		return core.TemplateDraft{}, fmt.Errorf("invalid form: %w", err)
	}

	draft := core.TemplateDraft{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Width:       core.Dimension(r.FormValue("width")),
		Height:      core.Dimension(r.FormValue("height")),
		Tags:        r.Form["tags[]"],
		Type:        r.FormValue("type"),
	}

	file, header, err := r.FormFile("preview_image")
	switch err {
	case nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return core.TemplateDraft{}, fmt.Errorf("read preview image: %w", err)
		}
		draft.PreviewImage = &core.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	case http.ErrMissingFile, http.ErrNotMultipart:
	default:
		return core.TemplateDraft{}, fmt.Errorf("read preview image: %w", err)
	}

	return draft, nil
}
