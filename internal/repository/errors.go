// Package repository implements the data access layer over MySQL. Sentinel
// errors let handlers translate storage outcomes into stable HTTP responses
// without inspecting driver errors themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when registering with an email that already has
// an account.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyBlacklisted is returned when a token string is inserted into the
// blacklist a second time. Handlers treat it as "token was already revoked".
var ErrAlreadyBlacklisted = errors.New("token already blacklisted")

// ErrBucketNotFound is returned when a bucket does not exist or belongs to a
// different user. The two cases are deliberately indistinguishable.
var ErrBucketNotFound = errors.New("bucket not found")

// ErrItemNotFound is the item-level analogue of ErrBucketNotFound.
var ErrItemNotFound = errors.New("item not found")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
