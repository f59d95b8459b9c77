package model

import "time"

// Bucket mirrors the `buckets` table. Every bucket belongs to exactly one
// user; the owner id is enforced in SQL predicates and never serialized.
type Bucket struct {
	ID         uint64    `json:"id"`
	OwnerID    uint64    `json:"-"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Item mirrors the `items` table, one level below a bucket.
type Item struct {
	ID          uint64    `json:"id"`
	BucketID    uint64    `json:"bucketId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}
