package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jo-hoe/gallery/internal/common"
)

// DiskWriter writes uploads into an upload root that must already exist.
type DiskWriter struct {
	uploadRoot string
	now        func() time.Time
}

func NewDiskWriter(uploadRoot string) *DiskWriter {
	return &DiskWriter{
		uploadRoot: uploadRoot,
		now:        time.Now,
	}
}

func (w *DiskWriter) Save(ctx context.Context, originalFilename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", common.E(common.KindIO, "save upload", err)
	}

	filename := deriveFilename(w.now(), originalFilename)
	if err := os.WriteFile(filepath.Join(w.uploadRoot, filename), data, 0o644); err != nil {
		return "", common.E(common.KindIO, "save upload", err)
	}
	return URLPrefix + filename, nil
}
