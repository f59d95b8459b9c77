package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/bucket-api/internal/model"
)

// ItemRepo persists items. Scoping is by bucket id; callers must have already
// verified that the bucket belongs to the authenticated user.
type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

// Create inserts an item and fills in its id and timestamps.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO items (bucket_id, name, description) VALUES (?,?,?)",
		it.BucketID, it.Name, it.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, modified_at FROM items WHERE id=?",
		it.ID).Scan(&it.CreatedAt, &it.ModifiedAt)
}

// GetByIDAndBucket fetches an item scoped to its bucket.
func (r *ItemRepo) GetByIDAndBucket(ctx context.Context, id, bucketID uint64) (model.Item, error) {
	var it model.Item
	var desc sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,bucket_id,name,description,created_at,modified_at FROM items WHERE id=? AND bucket_id=? LIMIT 1",
		id, bucketID).Scan(&it.ID, &it.BucketID, &it.Name, &desc, &it.CreatedAt, &it.ModifiedAt)
	if err == sql.ErrNoRows {
		return model.Item{}, ErrItemNotFound
	}
	it.Description = desc.String
	return it, err
}

// ListByBucket returns one page of a bucket's items plus the total matching
// row count, same contract as BucketRepo.ListByOwner.
func (r *ItemRepo) ListByBucket(ctx context.Context, bucketID uint64, q string, page, pageSize int) ([]model.Item, int64, error) {
	cond := "bucket_id=?"
	args := []any{bucketID}
	if q != "" {
		cond += " AND LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM items WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	argsData := append(append([]any{}, args...), pageSize, offset)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,bucket_id,name,description,created_at,modified_at FROM items WHERE "+cond+
			" ORDER BY id ASC LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Item, 0, pageSize)
	for rows.Next() {
		var it model.Item
		var desc sql.NullString
		if err := rows.Scan(&it.ID, &it.BucketID, &it.Name, &desc, &it.CreatedAt, &it.ModifiedAt); err != nil {
			return nil, 0, err
		}
		it.Description = desc.String
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update renames an item and replaces its description, bumping modified_at.
func (r *ItemRepo) Update(ctx context.Context, id, bucketID uint64, name, description string) (model.Item, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE items SET name=?, description=?, modified_at=NOW() WHERE id=? AND bucket_id=?",
		name, description, id, bucketID)
	if err != nil {
		return model.Item{}, err
	}
	return r.GetByIDAndBucket(ctx, id, bucketID)
}

// Delete removes an item from a bucket.
func (r *ItemRepo) Delete(ctx context.Context, id, bucketID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM items WHERE id=? AND bucket_id=?", id, bucketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}
