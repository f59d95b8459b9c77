package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bucket-api/internal/utils"
)

const blacklistKeyPrefix = "blacklist:"

// BlacklistRepo is the revocation ledger. MySQL is the source of truth; a
// Redis client, when present, mirrors revocations so the per-request
// membership check can usually skip the database. Entries are never pruned.
type BlacklistRepo struct {
	DB  *sql.DB
	RDB *redis.Client // may be nil
}

func NewBlacklistRepo(db *sql.DB, rdb *redis.Client) *BlacklistRepo {
	return &BlacklistRepo{DB: db, RDB: rdb}
}

// Blacklist records a token string as revoked. expiresAt is the token's own
// expiry claim and only bounds the Redis mirror; the SQL row is permanent.
// Inserting the same token twice returns ErrAlreadyBlacklisted.
func (r *BlacklistRepo) Blacklist(ctx context.Context, rawToken string, expiresAt time.Time) error {
	hash := utils.HashToken(rawToken)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO blacklist_tokens (token_hash) VALUES (?)", hash)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyBlacklisted
		}
		return err
	}
	if r.RDB != nil {
		if ttl := time.Until(expiresAt); ttl > 0 {
			// Best effort: a miss here only costs a SQL lookup later.
			_ = r.RDB.Set(ctx, blacklistKeyPrefix+hash, "1", ttl).Err()
		}
	}
	return nil
}

// IsBlacklisted reports whether a token string has been revoked.
func (r *BlacklistRepo) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	hash := utils.HashToken(rawToken)
	if r.RDB != nil {
		n, err := r.RDB.Exists(ctx, blacklistKeyPrefix+hash).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		// Redis misses and errors both fall through to SQL.
	}
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM blacklist_tokens WHERE token_hash=? LIMIT 1",
		hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
