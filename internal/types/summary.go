package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Summary is a post-processed narrative of a meeting under a chosen type tag.
// A meeting can carry more than one summary (e.g. a traction summary and a
// diagnostics summary produced from the same transcript).
type Summary struct {
	ID        string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	MeetingID string      `json:"meeting_id" gorm:"type:varchar(36);not null;index"`
	Meeting   Meeting     `json:"-" gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE"`
	Type      MeetingType `json:"type" gorm:"type:varchar(32);not null"`
	Narrative string      `json:"narrative" gorm:"type:text;not null"`
	// Payload holds the structured side of the narrative, e.g. extracted
	// action items, when the source produced one.
	Payload   JSON      `json:"payload,omitempty" gorm:"type:json"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (Summary) TableName() string { return "summaries" }
