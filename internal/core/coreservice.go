package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jo-hoe/gallery/internal/backend/cache"
	"github.com/jo-hoe/gallery/internal/backend/database"
	"github.com/jo-hoe/gallery/internal/backend/storage"
)

const DefaultTitle = "Untitled"

type CoreService struct {
	databaseService database.DatabaseService
	fileWriter      storage.FileWriter
	imageCache      *cache.ImageCache
}

func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}

	fileWriter, err := storage.NewFileWriter(ctx, storage.Config{
		Type:       config.Storage.Type,
		UploadRoot: config.Storage.UploadRoot,
		S3:         config.Storage.S3,
	})
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize file writer: %w", err)
	}

	var imageCache *cache.ImageCache
	if config.Cache.Address != "" {
		imageCache = cache.NewImageCache(config.Cache)
		if err := imageCache.Ping(ctx); err != nil {
			// reads fall back to the store while the cache is down
			slog.Warn("image cache not reachable at startup", "address", config.Cache.Address, "error", err)
		} else {
			slog.Info("image cache initialized", "address", config.Cache.Address, "ttl", config.Cache.TTL)
		}
	}

	return NewCoreServiceWithDependencies(databaseService, fileWriter, imageCache), nil
}

// NewCoreServiceWithDependencies wires already constructed collaborators. imageCache may be nil.
func NewCoreServiceWithDependencies(databaseService database.DatabaseService, fileWriter storage.FileWriter, imageCache *cache.ImageCache) *CoreService {
	return &CoreService{
		databaseService: databaseService,
		fileWriter:      fileWriter,
		imageCache:      imageCache,
	}
}

func (service *CoreService) ListImages(ctx context.Context) ([]*database.Image, error) {
	if service.imageCache != nil {
		cached, err := service.imageCache.GetAllImages(ctx)
		if err != nil {
			slog.Warn("image cache read failed", "key", "images:all", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	images, err := service.databaseService.GetAllImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	if service.imageCache != nil {
		if err := service.imageCache.SetAllImages(ctx, images); err != nil {
			slog.Warn("image cache write failed", "key", "images:all", "error", err)
		}
	}
	return images, nil
}

// GetImageByID returns nil and no error when no image has the given id.
func (service *CoreService) GetImageByID(ctx context.Context, id int64) (*database.Image, error) {
	if service.imageCache != nil {
		cached, err := service.imageCache.GetImage(ctx, id)
		if err != nil {
			slog.Warn("image cache read failed", "image_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	image, err := service.databaseService.GetImageByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get image %d: %w", id, err)
	}

	if image != nil && service.imageCache != nil {
		if err := service.imageCache.SetImage(ctx, image); err != nil {
			slog.Warn("image cache write failed", "image_id", id, "error", err)
		}
	}
	return image, nil
}

// AddImage writes the upload first and records it afterwards. A failed insert leaves the written
// file behind; the two steps are not atomic.
func (service *CoreService) AddImage(ctx context.Context, title string, filename string, data []byte) (*database.Image, error) {
	if title == "" {
		title = DefaultTitle
	}

	imageURL, err := service.fileWriter.Save(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save upload %s: %w", filename, err)
	}

	image, err := service.databaseService.CreateImage(ctx, title, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to record upload %s: %w", imageURL, err)
	}

	service.invalidateListing(ctx)
	return image, nil
}

// Seed replaces all rows with the sample images.
func (service *CoreService) Seed(ctx context.Context) ([]*database.Image, error) {
	if _, err := service.Reset(ctx); err != nil {
		return nil, err
	}

	images := make([]*database.Image, 0, len(sampleImages))
	for _, sample := range sampleImages {
		image, err := service.databaseService.CreateImage(ctx, sample.title, sample.imageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to seed image %q: %w", sample.title, err)
		}
		images = append(images, image)
	}
	service.invalidateListing(ctx)
	return images, nil
}

// Reset deletes every image row. Uploaded files are left on disk.
func (service *CoreService) Reset(ctx context.Context) (int64, error) {
	deleted, err := service.databaseService.DeleteAllImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset images: %w", err)
	}
	service.invalidateAll(ctx)
	return deleted, nil
}

func (service *CoreService) Close() error {
	var errs []error
	if service.imageCache != nil {
		errs = append(errs, service.imageCache.Close())
	}
	errs = append(errs, service.databaseService.Close())
	return errors.Join(errs...)
}

func (service *CoreService) invalidateListing(ctx context.Context) {
	if service.imageCache == nil {
		return
	}
	if err := service.imageCache.InvalidateAllImages(ctx); err != nil {
		slog.Warn("image cache invalidation failed", "error", err)
	}
}

func (service *CoreService) invalidateAll(ctx context.Context) {
	if service.imageCache == nil {
		return
	}
	if err := service.imageCache.InvalidateAll(ctx); err != nil {
		slog.Warn("image cache invalidation failed", "error", err)
	}
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}
