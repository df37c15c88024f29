package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	TypeDisk = "disk"
	TypeS3   = "s3"

	// URLPrefix is the public route under which uploaded files are addressed.
	URLPrefix = "/upload/"
)

// FileWriter persists uploaded bytes and returns the URL to record as image_url.
type FileWriter interface {
	Save(ctx context.Context, originalFilename string, data []byte) (string, error)
}

type Config struct {
	Type       string
	UploadRoot string
	S3         S3Config
}

func NewFileWriter(ctx context.Context, config Config) (FileWriter, error) {
	switch config.Type {
	case "", TypeDisk:
		return NewDiskWriter(config.UploadRoot), nil
	case TypeS3:
		return NewS3Writer(ctx, config.S3)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// deriveFilename prefixes the client file name with the upload time in unix milliseconds.
// Two uploads with the same name in the same millisecond collide.
func deriveFilename(now time.Time, originalFilename string) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), baseName(originalFilename))
}

// baseName drops any directory part a client put into the multipart file name.
func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload"
	}
	return name
}
