package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jo-hoe/gallery/internal/common"
)

// dialect holds what differs between the supported SQL engines.
type dialect struct {
	name                  string
	schema                string
	numberedPlaceholders  bool
	isConstraintViolation func(error) bool
}

// sqlDatabase implements DatabaseService on database/sql for any dialect.
type sqlDatabase struct {
	db      *sql.DB
	dialect dialect
}

const imageColumns = "id, title, image_url, created_at, updated_at"

// rebind rewrites '?' placeholders to $1..$n for engines that need numbered parameters.
func (d dialect) rebind(query string) string {
	if !d.numberedPlaceholders {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlDatabase) CreateDatabase() error {
	if _, err := s.db.Exec(s.dialect.schema); err != nil {
		return s.classify("create schema", err)
	}
	return nil
}

func (s *sqlDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *sqlDatabase) DoesDatabaseExist() bool {
	err := s.db.Ping()
	return err == nil
}

func (s *sqlDatabase) CreateImage(ctx context.Context, title string, imageURL string) (image *Image, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.classify("create image", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	var id int64
	row := tx.QueryRowContext(ctx,
		s.dialect.rebind("INSERT INTO images (title, image_url, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id"),
		title, imageURL, now, now)
	if err = row.Scan(&id); err != nil {
		return nil, s.classify("create image", err)
	}

	image, err = scanImage(tx.QueryRowContext(ctx,
		s.dialect.rebind("SELECT "+imageColumns+" FROM images WHERE id = ?"), id))
	if err != nil {
		return nil, s.classify("create image", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, s.classify("create image", err)
	}
	return image, nil
}

func (s *sqlDatabase) GetAllImages(ctx context.Context) ([]*Image, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+imageColumns+" FROM images ORDER BY id ASC")
	if err != nil {
		return nil, s.classify("list images", err)
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	images := make([]*Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, s.classify("list images", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify("list images", err)
	}
	return images, nil
}

func (s *sqlDatabase) GetImageByID(ctx context.Context, id int64) (*Image, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT "+imageColumns+" FROM images WHERE id = ?"), id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.classify("get image", err)
	}
	return img, nil
}

func (s *sqlDatabase) DeleteAllImages(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM images")
	if err != nil {
		return 0, s.classify("delete images", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, s.classify("delete images", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*Image, error) {
	var img Image
	if err := row.Scan(&img.ID, &img.Title, &img.ImageURL, &img.CreatedAt, &img.UpdatedAt); err != nil {
		return nil, err
	}
	img.CreatedAt = img.CreatedAt.UTC()
	img.UpdatedAt = img.UpdatedAt.UTC()
	return &img, nil
}

// classify tags a driver error with its kind; the op is prefixed with the dialect name.
func (s *sqlDatabase) classify(op string, err error) error {
	op = s.dialect.name + " " + op
	if errors.Is(err, sql.ErrNoRows) {
		return common.E(common.KindNotFound, op, err)
	}
	if s.dialect.isConstraintViolation != nil && s.dialect.isConstraintViolation(err) {
		return common.E(common.KindConstraintViolation, op, err)
	}
	return common.E(common.KindStoreUnavailable, op, err)
}
