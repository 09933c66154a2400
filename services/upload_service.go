package services

import (
	"bufio"
	"context"
	"io"
	"net/http"

	"nika.id/configs/configslog"
	"nika.id/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadServiceError is an upload failure shown to the user.
type UploadServiceError string

func (e UploadServiceError) Error() string { return string(e) }

const (
	ErrUploadEmpty       UploadServiceError = "berkas kosong"
	ErrUploadTooLarge    UploadServiceError = "ukuran berkas melebihi batas"
	ErrUploadType        UploadServiceError = "jenis berkas tidak didukung"
	ErrStorageNotEnabled UploadServiceError = "penyimpanan berkas tidak tersedia"
)

// UploadKind restricts what an upload endpoint accepts.
type UploadKind string

const (
	UploadImage     UploadKind = "image"
	UploadAudio     UploadKind = "audio"
	UploadAny       UploadKind = "any"
	UploadThumbnail UploadKind = "thumbnail"
)

const (
	MaxImageBytes = 5 << 20
	MaxAudioBytes = 10 << 20
)

// contentType -> stored extension
var (
	imageTypes = map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp", "image/gif": ".gif"}
	audioTypes = map[string]string{"audio/mpeg": ".mp3", "audio/wave": ".wav", "application/ogg": ".ogg", "audio/ogg": ".ogg", "video/mp4": ".m4a", "audio/mp4": ".m4a"}
)

// IUploadService stores user media.
type IUploadService interface {
	Upload(ctx context.Context, kind UploadKind, size int64, body io.Reader) (string, error)
}

// UploadService implements IUploadService on a storage.Uploader.
type UploadService struct {
	storage storage.Uploader
}

// NewUploadService returns a service storing into uploader. A nil uploader rejects every upload.
func NewUploadService(uploader storage.Uploader) IUploadService {
	return &UploadService{storage: uploader}
}

// sniff classifies the upload by its leading bytes, never by the client's filename or header.
func sniff(kind UploadKind, head []byte) (contentType, ext, folder string, limit int64, ok bool) {
	ct := http.DetectContentType(head)
	if kind != UploadAudio {
		if e, found := imageTypes[ct]; found {
			folder = "images"
			if kind == UploadThumbnail {
				folder = "thumbnails"
			}
			return ct, e, folder, MaxImageBytes, true
		}
	}
	if kind == UploadAudio || kind == UploadAny {
		if e, found := audioTypes[ct]; found {
			return ct, e, "audio", MaxAudioBytes, true
		}
	}
	return ct, "", "", 0, false
}

// Upload sniffs body, enforces the size limit of its type and returns the public URL.
func (s *UploadService) Upload(ctx context.Context, kind UploadKind, size int64, body io.Reader) (string, error) {
	if s.storage == nil {
		return "", ErrStorageNotEnabled
	}
	if size <= 0 {
		return "", ErrUploadEmpty
	}
	br := bufio.NewReaderSize(body, 512)
	// Peek reports io.EOF for files shorter than 512 bytes; what it returned is still usable.
	head, _ := br.Peek(512)
	if len(head) == 0 {
		return "", ErrUploadEmpty
	}
	ct, ext, folder, limit, ok := sniff(kind, head)
	if !ok {
		configslog.SLog.Debugf("rejected upload of type %s as %s", ct, kind)
		return "", ErrUploadType
	}
	if size > limit {
		return "", ErrUploadTooLarge
	}
	url, err := s.storage.Upload(ctx, storage.Object{
		Folder:      folder,
		Name:        uuid.NewString() + ext,
		Size:        size,
		ContentType: ct,
		Body:        io.LimitReader(br, limit),
	})
	if err != nil {
		configslog.Log.Error("upload to storage failed", zap.String("folder", folder), zap.Error(err))
		return "", err
	}
	return url, nil
}
