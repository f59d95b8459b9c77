package model

import "time"

// BlacklistToken models a row in the `blacklist_tokens` table. Only the
// SHA-256 hex digest of the raw token string is stored. Rows are written on
// logout and never updated or deleted; natural token expiry makes old rows
// harmless.
type BlacklistToken struct {
	ID            uint64    // blacklist_tokens.id
	TokenHash     string    // blacklist_tokens.token_hash
	BlacklistedAt time.Time // blacklist_tokens.blacklisted_at
}
