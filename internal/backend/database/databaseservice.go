package database

import (
	"context"
)

type DatabaseService interface {
	CreateDatabase() error
	// DoesDatabaseExist reports whether the database answers a ping.
	DoesDatabaseExist() bool
	Close() error

	// CreateImage inserts a row and reads it back in the same transaction, so the returned
	// record is identical to what later reads return.
	CreateImage(ctx context.Context, title string, imageURL string) (*Image, error)
	// GetAllImages returns every row in insertion order. The slice is never nil.
	GetAllImages(ctx context.Context) ([]*Image, error)
	// GetImageByID returns nil and no error when the id does not exist.
	GetImageByID(ctx context.Context, id int64) (*Image, error)
	DeleteAllImages(ctx context.Context) (int64, error)
}
