// Package storage puts uploaded files in MinIO/S3, or on local disk when no endpoint is configured.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"nika.id/configs/configslog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type Object struct {
	Folder      string
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

func (o Object) key() string {
	return path.Join(o.Folder, o.Name)
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

type MinioUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

func NewMinioUploader(ctx context.Context, cfg MinioConfig) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket %s: %w", cfg.Bucket, err)
		}
		configslog.SLog.Infof("MinIO bucket %s created", cfg.Bucket)
	}
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioUploader{client: client, bucket: cfg.Bucket, publicURL: public}, nil
}

func (m *MinioUploader) Upload(ctx context.Context, obj Object) (string, error) {
	info, err := m.client.PutObject(ctx, m.bucket, obj.key(), obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		configslog.Log.Error("MinioUploader.Upload failed", zap.String("key", obj.key()), zap.Error(err))
		return "", fmt.Errorf("storage: put %s: %w", obj.key(), err)
	}
	configslog.Log.Debug("object stored", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return m.publicURL + "/" + obj.key(), nil
}

// LocalUploader writes under Dir; the files are served from URLPrefix by the static handler.
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

func NewLocalUploader(dir, urlPrefix string) *LocalUploader {
	return &LocalUploader{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *LocalUploader) Upload(_ context.Context, obj Object) (string, error) {
	key := filepath.Clean(filepath.FromSlash(obj.key()))
	if strings.HasPrefix(key, "..") || filepath.IsAbs(key) {
		return "", fmt.Errorf("storage: invalid object key %q", obj.key())
	}
	dst := filepath.Join(l.Dir, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: create %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, obj.Body); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", dst, err)
	}
	return l.URLPrefix + "/" + filepath.ToSlash(key), nil
}

// New picks MinIO when an endpoint is configured and falls back to local disk when it is unreachable.
func New(ctx context.Context, cfg MinioConfig, uploadDir string) Uploader {
	local := NewLocalUploader(uploadDir, "/uploads")
	if cfg.Endpoint == "" {
		return local
	}
	m, err := NewMinioUploader(ctx, cfg)
	if err != nil {
		configslog.Log.Warn("MinIO unavailable, storing uploads on local disk", zap.Error(err))
		return local
	}
	configslog.SLog.Infof("MinIO storage ready at %s", cfg.Endpoint)
	return m
}
