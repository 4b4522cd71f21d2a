package templates

import (
	"bytes"
	"canvas-templates/core"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultPreviewFilename = "preview_image"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeDraft builds the multipart body for create and update. The empty
// objects field is always sent because the server expects it. Updates pass
// their positive id, which is appended last; creates pass 0.
func encodeDraft(draft core.TemplateDraft, id int64) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := []struct {
		name, value string
	}{
		{"name", draft.Name},
		{"objects", ""},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	optional := []struct {
		name, value string
	}{
		{"description", draft.Description},
		{"width", draft.Width.String()},
		{"height", draft.Height.String()},
	}
	for _, f := range optional {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if draft.PreviewImage != nil {
		if err := writeUpload(w, "preview_image", draft.PreviewImage); err != nil {
			return nil, "", err
		}
	}

	for _, tag := range draft.Tags {
		if err := w.WriteField("tags[]", tag); err != nil {
			return nil, "", err
		}
	}

	if draft.Type != "" {
		if err := w.WriteField("type", draft.Type); err != nil {
			return nil, "", err
		}
	}

	if id != 0 {
		if err := w.WriteField("id", strconv.FormatInt(id, 10)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func writeUpload(w *multipart.Writer, field string, upload *core.Upload) error {
	filename := upload.Filename
	if filename == "" {
		filename = defaultPreviewFilename
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, upload.Reader())
	return err
}
