package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is a single message pulled from a watched chat room. Idempotent
// on (chat, external_id): a second ingest attempt is a no-op.
type ChatMessage struct {
	ID              string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChatExternalID  int64     `json:"chat_external_id" gorm:"not null;uniqueIndex:idx_chat_external;index:idx_chat_ts,priority:1"`
	Chat            ChatRoom  `json:"-" gorm:"foreignKey:ChatExternalID;references:ExternalID;constraint:OnDelete:CASCADE"`
	ExternalID      int64     `json:"external_id" gorm:"not null;uniqueIndex:idx_chat_external,priority:2"`
	Timestamp       time.Time `json:"timestamp" gorm:"not null;index:idx_chat_ts,priority:2"`
	SenderName      *string   `json:"sender_name" gorm:"type:varchar(255)"`
	Text            *string   `json:"text" gorm:"type:text"`
	HasMedia        bool      `json:"has_media" gorm:"not null;default:false"`
	MediaTag        *string   `json:"media_tag" gorm:"type:varchar(64)"`
	// MeetingID is set when the message is an external-shared summary that
	// references an already-ingested meeting.
	MeetingID *string  `json:"meeting_id" gorm:"type:varchar(36);index"`
	Meeting   *Meeting `json:"meeting,omitempty" gorm:"foreignKey:MeetingID"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (ChatMessage) TableName() string { return "chat_messages" }
