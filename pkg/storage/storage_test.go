package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/uploads/")
	url, err := u.Upload(context.Background(), Object{
		Folder: "images/7", Name: "a.png", Size: 5, ContentType: "image/png", Body: strings.NewReader("hello"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/images/7/a.png" {
		t.Errorf("url = %q", url)
	}
	b, err := os.ReadFile(filepath.Join(dir, "images", "7", "a.png"))
	if err != nil || string(b) != "hello" {
		t.Fatalf("file content %q, err %v", b, err)
	}
}

func TestLocalUploaderRejectsTraversal(t *testing.T) {
	u := NewLocalUploader(t.TempDir(), "/uploads")
	_, err := u.Upload(context.Background(), Object{Folder: "../../etc", Name: "passwd", Body: strings.NewReader("x")})
	if err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

func TestNewWithoutEndpointIsLocal(t *testing.T) {
	if _, ok := New(context.Background(), MinioConfig{}, t.TempDir()).(*LocalUploader); !ok {
		t.Fatal("expected local uploader")
	}
}
