package common

import (
	"io"
	"log/slog"
	"mime/multipart"
)

// ReadUpload buffers the whole uploaded file; upload size is bounded by memory.
func ReadUpload(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, E(KindMalformedRequest, "open uploaded file", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("ReadUpload: failed to close uploaded file reader", "error", cerr, "filename", header.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, E(KindMalformedRequest, "read uploaded file", err)
	}
	return data, nil
}
