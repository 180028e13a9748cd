package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreatePhoto stores processed image bytes and returns the photo ID.
func CreatePhoto(ctx context.Context, db *sql.DB, data []byte, mime string, uploadedBy int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO photos (data, mime, uploaded_by) VALUES (?, ?, ?)`,
		data, mime, uploadedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("storing photo: %w", err)
	}
	return result.LastInsertId()
}

// GetPhoto returns a photo's bytes and MIME type. data is nil if the photo does not exist.
func GetPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM photos WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo: %w", err)
	}
	return data, mime, nil
}
