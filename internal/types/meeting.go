package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meeting is a recorded conversation, transcribed either by the transcript
// provider or imported manually.
type Meeting struct {
	ID string `json:"id" gorm:"type:varchar(36);primaryKey"`
	// ProviderMeetingID is the transcription provider's own id, unique when
	// present so the webhook path can short-circuit on repeat delivery.
	ProviderMeetingID *string `json:"provider_meeting_id" gorm:"type:varchar(128);uniqueIndex"`
	Title             string  `json:"title" gorm:"type:varchar(512);not null"`
	HeldAt            *time.Time `json:"held_at"`
	Transcript        string     `json:"transcript" gorm:"type:text"`
	ClientID          *string    `json:"client_id" gorm:"type:varchar(36);index"`
	Client            *Client    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	// Type is one of the closed MeetingType values, or empty when untagged.
	Type      MeetingType    `json:"type" gorm:"type:varchar(32)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (Meeting) TableName() string { return "meetings" }
