package aws

import (
	"canvas-templates/core"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockS3 keeps objects in a map keyed by bucket/key.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string]string
	putErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string]string)}
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.objects[*in.Bucket+"/"+*in.Key] = string(b)
	m.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	delete(m.objects, *in.Bucket+"/"+*in.Key)
	m.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func TestSaveLoadClear(t *testing.T) {
	client := newMockS3()
	store := NewStoreWithClient(client, "tokens")
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("Load() of a missing key should return ErrTokenNotFound, got %v", err)
	}

	if err := store.Save(ctx, "abc"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if got := client.objects["tokens/"+core.TokenKey]; got != "abc" {
		t.Errorf("object content mismatch: got %q", got)
	}

	token, err := store.Load(ctx)
	if err != nil || token != "abc" {
		t.Errorf("Load() = %q, %v; want abc", token, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("Load() after Clear() should return ErrTokenNotFound, got %v", err)
	}
}

func TestSave_Error(t *testing.T) {
	client := newMockS3()
	client.putErr = errors.New("access denied")
	store := NewStoreWithClient(client, "tokens")

	if err := store.Save(context.Background(), "abc"); err == nil {
		t.Error("Save() should surface the S3 error")
	}
}
