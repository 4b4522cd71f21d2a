package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type (
	// Template is a canvas template as returned by the remote API.
	Template struct {
		ID           int64     `json:"id"`
		Name         string    `json:"name"`
		Description  string    `json:"description,omitempty"`
		Width        Dimension `json:"width,omitempty"`
		Height       Dimension `json:"height,omitempty"`
		Tags         []string  `json:"tags,omitempty"`
		Type         string    `json:"type,omitempty"`
		PreviewImage string    `json:"preview_image,omitempty"` // URL on read.
		CreatedAt    string    `json:"created_at,omitempty"`
		UpdatedAt    string    `json:"updated_at,omitempty"`
		CreatedBy    string    `json:"created_by,omitempty"`
		UpdatedBy    string    `json:"updated_by,omitempty"`
	}

	// TemplateDraft holds the client-writable fields of a template.
	// The server assigns the id, so there is none here.
	TemplateDraft struct {
		Name         string
		Description  string
		Width        Dimension
		Height       Dimension
		Tags         []string
		Type         string
		PreviewImage *Upload
	}

	// Upload is a binary file sent as a multipart file part.
	Upload struct {
		Filename    string
		ContentType string
		Data        []byte
	}

	// Dimension is a numeric value carried as a string. The API is not
	// consistent about quoting it, so both JSON strings and numbers decode.
	Dimension string
)

// Reader returns a fresh reader over the upload bytes.
func (u *Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

func (d *Dimension) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Dimension(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("dimension must be a string or number: %w", err)
	}
	*d = Dimension(n.String())
	return nil
}

// Int parses the dimension as an integer.
func (d Dimension) Int() (int, error) {
	return strconv.Atoi(string(d))
}

func (d Dimension) String() string {
	return string(d)
}
