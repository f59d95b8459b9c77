package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/bucket-api/internal/model"
)

// BucketRepo persists buckets. Every statement carries an owner_id predicate:
// the WHERE clause is the access-control boundary, so a bucket belonging to
// another user is indistinguishable from one that does not exist.
type BucketRepo struct{ DB *sql.DB }

func NewBucketRepo(db *sql.DB) *BucketRepo { return &BucketRepo{DB: db} }

// Create inserts a bucket and fills in its id and timestamps.
func (r *BucketRepo) Create(ctx context.Context, b *model.Bucket) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO buckets (owner_id, name) VALUES (?,?)",
		b.OwnerID, b.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, modified_at FROM buckets WHERE id=?",
		b.ID).Scan(&b.CreatedAt, &b.ModifiedAt)
}

// GetByIDAndOwner fetches a bucket scoped to its owner. Missing rows and
// cross-tenant rows both return ErrBucketNotFound.
func (r *BucketRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Bucket, error) {
	var b model.Bucket
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,owner_id,name,created_at,modified_at FROM buckets WHERE id=? AND owner_id=? LIMIT 1",
		id, ownerID).Scan(&b.ID, &b.OwnerID, &b.Name, &b.CreatedAt, &b.ModifiedAt)
	if err == sql.ErrNoRows {
		return model.Bucket{}, ErrBucketNotFound
	}
	return b, err
}

// ListByOwner returns one page of the caller's buckets plus the total number
// of matching rows. q, when non-empty, is a case-insensitive substring match
// on the name. Ordering is id ASC so pages never skip or repeat rows.
func (r *BucketRepo) ListByOwner(ctx context.Context, ownerID uint64, q string, page, pageSize int) ([]model.Bucket, int64, error) {
	cond := "owner_id=?"
	args := []any{ownerID}
	if q != "" {
		cond += " AND LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM buckets WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	argsData := append(append([]any{}, args...), pageSize, offset)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,owner_id,name,created_at,modified_at FROM buckets WHERE "+cond+
			" ORDER BY id ASC LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Bucket, 0, pageSize)
	for rows.Next() {
		var b model.Bucket
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.CreatedAt, &b.ModifiedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateName renames a bucket and bumps its modification timestamp.
func (r *BucketRepo) UpdateName(ctx context.Context, id, ownerID uint64, name string) (model.Bucket, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE buckets SET name=?, modified_at=NOW() WHERE id=? AND owner_id=?",
		name, id, ownerID)
	if err != nil {
		return model.Bucket{}, err
	}
	// Zero rows affected can mean "not owned" or "name unchanged"; the
	// owner-scoped read distinguishes the two.
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// Delete removes a bucket owned by the caller.
func (r *BucketRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM buckets WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBucketNotFound
	}
	return nil
}
