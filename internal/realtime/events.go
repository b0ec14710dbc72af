package realtime

import (
	"encoding/json"
	"time"

	"newskoo/internal/models"
)

// Inbound event names as the backend emits them. EventConnect and
// EventDisconnect are synthesized locally on state transitions.
const (
	EventConnect        = "connect"
	EventDisconnect     = "disconnect"
	EventOnlineUsers    = "online_users_count"
	EventRoomUsers      = "room_users_count"
	EventNewComment     = "new_comment"
	EventCommentDeleted = "comment_deleted"
	EventPostLiked      = "post_liked"
	EventPostViewed     = "post_viewed"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventNotification   = "notification"
)

// Outbound intents.
const (
	emitJoinPost   = "join_post"
	emitLeavePost  = "leave_post"
	emitTyping     = "typing"
	emitStopTyping = "stop_typing"
)

// Envelope is the wire frame: a named event and its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type roomPayload struct {
	PostID int64 `json:"post_id"`
}

type typingPayload struct {
	PostID   int64  `json:"post_id"`
	Username string `json:"username,omitempty"`
}

type OnlineUsersEvent struct {
	Count int `json:"count"`
}

type RoomUsersEvent struct {
	PostID int64 `json:"post_id"`
	Count  int   `json:"count"`
}

type NewCommentEvent struct {
	PostID  int64          `json:"post_id"`
	Comment models.Comment `json:"comment"`
}

type CommentDeletedEvent struct {
	PostID    int64 `json:"post_id"`
	CommentID int64 `json:"comment_id"`
}

type PostLikedEvent struct {
	PostID     int64 `json:"post_id"`
	LikesCount int64 `json:"likes_count"`
}

type PostViewedEvent struct {
	PostID     int64 `json:"post_id"`
	ViewsCount int64 `json:"views_count"`
}

type UserTypingEvent struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	PostID   int64  `json:"post_id"`
}

type UserStopTypingEvent struct {
	UserID int64 `json:"user_id"`
	PostID int64 `json:"post_id"`
}

type NotificationEvent struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // comment, like, mention, follow
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscribe registers a typed callback for event, decoding the payload
// into T. Payloads that fail to decode are logged and dropped.
func Subscribe[T any](c *Client, event string, fn func(T)) *Handler {
	return c.On(event, func(data json.RawMessage) {
		var v T
		if len(data) > 0 {
			if err := json.Unmarshal(data, &v); err != nil {
				c.log.Warn().Err(err).Str("event", event).Msg("dropping malformed event payload")
				return
			}
		}
		fn(v)
	})
}
