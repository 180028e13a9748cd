package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/findersfee/internal/model"
)

const itemColumns = `id, kind, title, description, category, location, event_date, photo_ref,
	reporter_id, reporter_name, reporter_phone, reward, commission, status, verified,
	payment_status, created_at, updated_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var photo sql.NullString
	err := s.Scan(&item.ID, &item.Kind, &item.Title, &item.Description, &item.Category,
		&item.Location, &item.EventDate, &photo,
		&item.ReporterID, &item.ReporterName, &item.ReporterPhone, &item.Reward, &item.Commission,
		&item.Status, &item.Verified, &item.PaymentStatus, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err != nil {
		return nil, err
	}
	item.PhotoRef = photo.String
	return item, nil
}

// CreateItem inserts a new item report.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (kind, title, description, category, location, event_date, photo_ref,
		                    reporter_id, reporter_name, reporter_phone, reward, commission, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Kind, item.Title, item.Description, item.Category, item.Location, item.EventDate,
		nullString(item.PhotoRef), item.ReporterID, item.ReporterName, item.ReporterPhone,
		item.Reward, item.Commission, model.ItemStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted items.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns non-deleted items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f model.ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE deleted_at IS NULL`
	var args []any

	if f.OwnerID > 0 {
		query += ` AND reporter_id = ?`
		args = append(args, f.OwnerID)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		query += ` AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem updates an active item's report fields.
// Returns false if the item is missing, deleted or no longer active.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, d model.ItemDraft, reporterPhone string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, location = ?, event_date = ?,
		                  photo_ref = ?, reporter_phone = ?, reward = ?, commission = ?,
		                  updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND status = 'active'`,
		d.Title, d.Description, d.Category, d.Location, d.EventDate,
		nullString(d.PhotoRef), reporterPhone, d.Reward, d.Commission, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated item: %w", err)
	}
	return n > 0, nil
}

// MarkItemTerminal moves an active item to a terminal status and sets the
// verification flag. Returns false if the item was not active.
func MarkItemTerminal(ctx context.Context, db *sql.DB, id int64, status string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, verified = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'active'`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("marking item terminal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking terminal item: %w", err)
	}
	return n > 0, nil
}

// SetItemPaymentStatus records whether the item's claim has been paid for.
func SetItemPaymentStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item payment status: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item. Claims keep referencing it.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
