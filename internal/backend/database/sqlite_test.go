package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jo-hoe/gallery/internal/common"
)

func newTestDB(t *testing.T) DatabaseService {
	t.Helper()

	ds, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	if err := ds.CreateDatabase(); err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestSQLite_DoesDatabaseExist(t *testing.T) {
	ds := newTestDB(t)
	if !ds.DoesDatabaseExist() {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestSQLite_CreateDatabase_Idempotent(t *testing.T) {
	ds := newTestDB(t)
	if err := ds.CreateDatabase(); err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
}

func TestSQLite_CreateImage(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	img, err := ds.CreateImage(ctx, "Sunset", "/upload/1_sunset.png")
	if err != nil {
		t.Fatalf("CreateImage error: %v", err)
	}
	if img.ID <= 0 {
		t.Errorf("expected positive id, got %d", img.ID)
	}
	if img.Title != "Sunset" {
		t.Errorf("expected title %q, got %q", "Sunset", img.Title)
	}
	if img.ImageURL != "/upload/1_sunset.png" {
		t.Errorf("expected image_url %q, got %q", "/upload/1_sunset.png", img.ImageURL)
	}
	if img.CreatedAt.IsZero() || img.UpdatedAt.IsZero() {
		t.Errorf("expected timestamps to be set, got created=%v updated=%v", img.CreatedAt, img.UpdatedAt)
	}
	if !img.CreatedAt.Equal(img.UpdatedAt) {
		t.Errorf("expected created_at == updated_at on insert, got %v and %v", img.CreatedAt, img.UpdatedAt)
	}
}

func TestSQLite_GetImageByID(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	created, err := ds.CreateImage(ctx, "A", "/upload/a.png")
	if err != nil {
		t.Fatalf("CreateImage error: %v", err)
	}

	img, err := ds.GetImageByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetImageByID error: %v", err)
	}
	if img == nil {
		t.Fatalf("GetImageByID returned nil; expected image")
	}
	if *img != *created {
		t.Errorf("expected %+v, got %+v", *created, *img)
	}

	// Test non-existent ID
	img2, err := ds.GetImageByID(ctx, created.ID+1)
	if err != nil {
		t.Fatalf("GetImageByID(non-existent) error: %v", err)
	}
	if img2 != nil {
		t.Fatalf("GetImageByID(non-existent) returned non-nil; expected nil")
	}
}

func TestSQLite_GetAllImages_InsertionOrder(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	images, err := ds.GetAllImages(ctx)
	if err != nil {
		t.Fatalf("GetAllImages error: %v", err)
	}
	if images == nil || len(images) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", images)
	}

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := ds.CreateImage(ctx, title, "/upload/"+title+".png"); err != nil {
			t.Fatalf("CreateImage(%s) error: %v", title, err)
		}
	}

	images, err = ds.GetAllImages(ctx)
	if err != nil {
		t.Fatalf("GetAllImages error: %v", err)
	}
	if len(images) != len(titles) {
		t.Fatalf("expected %d images, got %d", len(titles), len(images))
	}
	for i, img := range images {
		if img.Title != titles[i] {
			t.Errorf("image[%d]: expected title %q, got %q", i, titles[i], img.Title)
		}
		if i > 0 && img.ID <= images[i-1].ID {
			t.Errorf("image[%d]: expected ascending ids, got %d after %d", i, img.ID, images[i-1].ID)
		}
	}
}

func TestSQLite_IDsAreNotReused(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	first, err := ds.CreateImage(ctx, "a", "/upload/a.png")
	if err != nil {
		t.Fatalf("CreateImage error: %v", err)
	}
	if _, err := ds.DeleteAllImages(ctx); err != nil {
		t.Fatalf("DeleteAllImages error: %v", err)
	}
	second, err := ds.CreateImage(ctx, "b", "/upload/b.png")
	if err != nil {
		t.Fatalf("CreateImage error: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected id after reset to be greater than %d, got %d", first.ID, second.ID)
	}
}

func TestSQLite_DeleteAllImages(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b"} {
		if _, err := ds.CreateImage(ctx, title, "/upload/"+title); err != nil {
			t.Fatalf("CreateImage error: %v", err)
		}
	}

	deleted, err := ds.DeleteAllImages(ctx)
	if err != nil {
		t.Fatalf("DeleteAllImages error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted rows, got %d", deleted)
	}

	images, err := ds.GetAllImages(ctx)
	if err != nil {
		t.Fatalf("GetAllImages error: %v", err)
	}
	if len(images) != 0 {
		t.Fatalf("expected 0 images after deletion, got %d", len(images))
	}
}

func TestSQLite_ClosedDatabaseIsStoreUnavailable(t *testing.T) {
	ds := newTestDB(t)
	if err := ds.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	_, err := ds.GetAllImages(context.Background())
	if err == nil {
		t.Fatal("expected error on closed database")
	}
	if common.KindOf(err) != common.KindStoreUnavailable {
		t.Errorf("expected kind %q, got %q (%v)", common.KindStoreUnavailable, common.KindOf(err), err)
	}
}

func TestSQLite_NotNullIsConstraintViolation(t *testing.T) {
	ds := newTestDB(t)
	_, execErr := ds.(*sqlDatabase).db.Exec("INSERT INTO images (title, image_url, created_at, updated_at) VALUES (NULL, 'x', 'now', 'now')")
	if execErr == nil {
		t.Fatal("expected NOT NULL failure")
	}
	classified := ds.(*sqlDatabase).classify("insert", execErr)
	if common.KindOf(classified) != common.KindConstraintViolation {
		t.Errorf("expected kind %q, got %q", common.KindConstraintViolation, common.KindOf(classified))
	}
	if !errors.Is(classified, execErr) {
		t.Errorf("expected classified error to wrap the driver error")
	}
	var tagged *common.Error
	if !errors.As(classified, &tagged) || tagged.Op != "sqlite insert" {
		t.Errorf("expected op to carry the dialect name, got %v", classified)
	}
}
