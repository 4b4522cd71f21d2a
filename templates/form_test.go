package templates

import (
	"canvas-templates/core"
	"io"
	"mime"
	"mime/multipart"
	"testing"
)

type part struct {
	name, filename, contentType, value string
}

func readParts(t *testing.T, draft core.TemplateDraft, id int64) []part {
	t.Helper()
	body, contentType, err := encodeDraft(draft, id)
	if err != nil {
		t.Fatalf("encodeDraft() failed: %v", err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("invalid content type %q: %v", contentType, err)
	}

	var parts []part
	r := multipart.NewReader(body, params["boundary"])
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() failed: %v", err)
		}
		b, _ := io.ReadAll(p)
		parts = append(parts, part{
			name:        p.FormName(),
			filename:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			value:       string(b),
		})
	}
	return parts
}

func TestEncodeDraft_MinimalFields(t *testing.T) {
	parts := readParts(t, core.TemplateDraft{Name: "Menu"}, 0)

	if len(parts) != 2 {
		t.Fatalf("expected name and objects only, got %+v", parts)
	}
	if parts[0].name != "name" || parts[0].value != "Menu" {
		t.Errorf("first part mismatch: %+v", parts[0])
	}
	if parts[1].name != "objects" || parts[1].value != "" {
		t.Errorf("objects part mismatch: %+v", parts[1])
	}
}

func TestEncodeDraft_AllFieldsInOrder(t *testing.T) {
	draft := core.TemplateDraft{
		Name:        "Menu",
		Description: "Breakfast menu",
		Width:       "1920",
		Height:      "1080",
		Tags:        []string{"food", "morning"},
		Type:        "image",
		PreviewImage: &core.Upload{
			Filename: "menu.jpg",
			Data:     []byte("jpeg"),
		},
	}
	parts := readParts(t, draft, 42)

	want := []string{"name", "objects", "description", "width", "height", "preview_image", "tags[]", "tags[]", "type", "id"}
	if len(parts) != len(want) {
		t.Fatalf("part count mismatch: got %d, want %d (%+v)", len(parts), len(want), parts)
	}
	for i, name := range want {
		if parts[i].name != name {
			t.Errorf("part %d: got %q, want %q", i, parts[i].name, name)
		}
	}

	preview := parts[5]
	if preview.filename != "menu.jpg" || preview.value != "jpeg" {
		t.Errorf("preview part mismatch: %+v", preview)
	}
	if preview.contentType != "image/jpeg" {
		t.Errorf("preview content type mismatch: got %q", preview.contentType)
	}
	if parts[6].value != "food" || parts[7].value != "morning" {
		t.Errorf("tags out of order: %q %q", parts[6].value, parts[7].value)
	}
	if parts[9].value != "42" {
		t.Errorf("id mismatch: got %q", parts[9].value)
	}
}

func TestEncodeDraft_UploadDefaults(t *testing.T) {
	parts := readParts(t, core.TemplateDraft{
		Name:         "x",
		PreviewImage: &core.Upload{Data: []byte{1, 2, 3}},
	}, 0)

	preview := parts[2]
	if preview.filename != defaultPreviewFilename {
		t.Errorf("filename should default, got %q", preview.filename)
	}
	if preview.contentType != "application/octet-stream" {
		t.Errorf("content type should default, got %q", preview.contentType)
	}
}

func TestEncodeDraft_ExplicitContentType(t *testing.T) {
	parts := readParts(t, core.TemplateDraft{
		Name:         "x",
		PreviewImage: &core.Upload{Filename: "a.bin", ContentType: "image/webp", Data: []byte{1}},
	}, 0)

	if parts[2].contentType != "image/webp" {
		t.Errorf("explicit content type should win, got %q", parts[2].contentType)
	}
}
