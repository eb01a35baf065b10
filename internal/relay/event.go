package relay

import "time"

// EventKind distinguishes like and unlike events.
type EventKind string

// Event kinds carried on the like-event topic.
const (
	EventLike   EventKind = "LIKE"
	EventUnlike EventKind = "REMOVE_LIKE"
)

// LikeEvent is the message published after a like toggle commits. LikesCount
// is the post-toggle counter value returned to the caller, never an
// independently computed one.
type LikeEvent struct {
	Kind       EventKind `json:"event_type"`
	ImageID    int64     `json:"image_id"`
	OwnerID    int64     `json:"image_owner_id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	LikesCount int       `json:"likes_count"`
	At         time.Time `json:"instant"`
}
