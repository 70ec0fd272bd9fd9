package types

import "time"

// ChatRoom is a monitored conversation space in the chat network. The
// external id is the chat network's own numeric id (can be negative for
// supergroups) and doubles as the primary key; there is no surrogate id.
type ChatRoom struct {
	ExternalID int64   `json:"external_id" gorm:"primaryKey"`
	Title      string  `json:"title" gorm:"type:varchar(512);not null"`
	ClientID   *string `json:"client_id" gorm:"type:varchar(36);index"`
	Client     *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	// ClientName mirrors the client's name at linking time for fast
	// substring filtering without a join; kept in sync by the entity graph.
	ClientName *string `json:"client_name" gorm:"type:varchar(255);index"`
	// LastSyncedMessageID is the reconciliation watermark: the highest
	// external message id committed for this room. Monotonic non-decreasing
	// while the room is active.
	LastSyncedMessageID int64     `json:"last_synced_message_id" gorm:"not null;default:0"`
	Active              bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt           time.Time `json:"created_at"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }
