package core

import (
	"encoding/json"
	"io"
	"testing"
)

func TestTemplate_UnmarshalDimensions(t *testing.T) {
	payload := `{"id":7,"name":"Menu","width":1920,"height":"1080","tags":["a","b"],"preview_image":"https://cdn/x.png","created_by":"dev"}`

	var tpl Template
	if err := json.Unmarshal([]byte(payload), &tpl); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if tpl.ID != 7 || tpl.Name != "Menu" {
		t.Errorf("Identity mismatch: got %d %q", tpl.ID, tpl.Name)
	}
	if tpl.Width != "1920" {
		t.Errorf("numeric width should decode as string, got %q", tpl.Width)
	}
	if tpl.Height != "1080" {
		t.Errorf("string height mismatch, got %q", tpl.Height)
	}
	if n, err := tpl.Width.Int(); err != nil || n != 1920 {
		t.Errorf("Width.Int() = %d, %v", n, err)
	}
	if len(tpl.Tags) != 2 || tpl.Tags[1] != "b" {
		t.Errorf("Tags mismatch: %v", tpl.Tags)
	}
	if tpl.PreviewImage != "https://cdn/x.png" {
		t.Errorf("PreviewImage mismatch: %q", tpl.PreviewImage)
	}
}

func TestDimension_Null(t *testing.T) {
	var tpl Template
	if err := json.Unmarshal([]byte(`{"id":1,"name":"x","width":null}`), &tpl); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if tpl.Width != "" {
		t.Errorf("null width should decode as empty, got %q", tpl.Width)
	}
}

func TestDimension_RejectsBool(t *testing.T) {
	var tpl Template
	if err := json.Unmarshal([]byte(`{"id":1,"name":"x","width":true}`), &tpl); err == nil {
		t.Error("boolean width should fail to decode")
	}
}

func TestUpload_Reader(t *testing.T) {
	u := &Upload{Data: []byte("png")}
	for i := 0; i < 2; i++ {
		b, err := io.ReadAll(u.Reader())
		if err != nil || string(b) != "png" {
			t.Errorf("Reader() pass %d = %q, %v", i, b, err)
		}
	}
}
