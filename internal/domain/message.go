package domain

import "time"

// Conversation is identified by the unordered participant pair. ParticipantKey
// is "min:max" of the two user ids so lookups never depend on who started it.
type Conversation struct {
	ID             int64     `json:"id,string" form:"id"`
	ParticipantKey string    `gorm:"uniqueIndex;size:64" json:"-"`
	UserA          int64     `gorm:"index" json:"user_a,string" form:"user_a"`
	UserB          int64     `gorm:"index" json:"user_b,string" form:"user_b"`
	LastMessageAt  time.Time `json:"last_message_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Conversation) TableName() string {
	return "mkt_conversation"
}

// Message belongs to exactly one conversation. ClientRef is the sender-side
// identifier; the server upserts on it so outbox retries never duplicate a
// message.
type Message struct {
	ID             int64     `json:"id,string" form:"id"`
	ConversationID int64     `gorm:"index" json:"conversation_id,string" form:"conversation_id"`
	SenderID       int64     `json:"sender_id,string" form:"sender_id"`
	ClientRef      string    `gorm:"index;size:64" json:"client_ref" form:"client_ref"`
	Body           string    `gorm:"size:8192" json:"body" form:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName Specify table name
func (Message) TableName() string {
	return "mkt_message"
}

// ConversationSeen tracks the last moment a user viewed a conversation;
// unread counts are computed from it.
type ConversationSeen struct {
	ID             int64     `json:"id,string" form:"id"`
	ConversationID int64     `gorm:"index:idx_seen_conv_user,unique" json:"conversation_id,string" form:"conversation_id"`
	UserID         int64     `gorm:"index:idx_seen_conv_user,unique" json:"user_id,string" form:"user_id"`
	LastSeenAt     time.Time `json:"last_seen_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ConversationSeen) TableName() string {
	return "mkt_conversation_seen"
}

// Notification is a per-user feed entry. UserID 0 rows are broadcast
// templates fanned out to concrete users by the notify service.
type Notification struct {
	ID        int64     `json:"id,string" form:"id"`
	UserID    int64     `gorm:"index" json:"user_id,string" form:"user_id"`
	Title     string    `json:"title" form:"title"`
	Body      string    `gorm:"size:4096" json:"body" form:"body"`
	Read      bool      `gorm:"index" json:"read" form:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Notification) TableName() string {
	return "mkt_notification"
}
