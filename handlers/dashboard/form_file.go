package handlers

import (
	"io"
	"mime/multipart"

	"nika.id/services"
)

const maxThemeFileBytes = 256 << 10

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxThemeFileBytes {
		return nil, services.ErrUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxThemeFileBytes))
}
