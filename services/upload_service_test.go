package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadSniffsContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	url, err := env.svc.Uploads.Upload(ctx, UploadImage, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "/uploads/images/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %s", url)
	}
	if got := env.uploader.objects[strings.TrimPrefix(url, "/uploads/")]; !bytes.Equal(got, pngHeader) {
		t.Fatal("stored bytes differ from upload")
	}

	thumb, err := env.svc.Uploads.Upload(ctx, UploadThumbnail, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(thumb, "/uploads/thumbnails/") {
		t.Fatalf("thumbnail url = %s", thumb)
	}

	cases := []struct {
		name string
		kind UploadKind
		size int64
		body []byte
		want error
	}{
		{"text as image", UploadImage, 11, []byte("hello world"), ErrUploadType},
		{"png as audio", UploadAudio, int64(len(pngHeader)), pngHeader, ErrUploadType},
		{"empty", UploadImage, 0, nil, ErrUploadEmpty},
		{"too large", UploadImage, MaxImageBytes + 1, pngHeader, ErrUploadTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Uploads.Upload(ctx, tc.kind, tc.size, bytes.NewReader(tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Storage = nil })
	_, err := env.svc.Uploads.Upload(context.Background(), UploadImage, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	if !errors.Is(err, ErrStorageNotEnabled) {
		t.Fatalf("err = %v", err)
	}
}
