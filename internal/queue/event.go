// Package queue defines message payloads exchanged over the message broker.
package queue

// Event names carried in UserActivityEvent.Event.
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedOut  = "user.logged_out"
	EventBucketCreated  = "bucket.created"
)

// UserActivityEvent is published whenever a user registers, logs out or
// creates a bucket. It carries enough information for downstream consumers
// to write audit logs or notifications without querying the primary
// database. Fields that do not apply to an event are left empty.
type UserActivityEvent struct {
	Event      string `json:"event"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	BucketID   uint64 `json:"bucket_id,omitempty"`
	BucketName string `json:"bucket_name,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
