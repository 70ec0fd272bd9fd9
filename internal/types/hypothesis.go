package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hypothesis is a consultant's working hypothesis about a client, optionally
// anchored to the meeting where it was raised. Outer-shell CRUD entity; it
// does not participate in chunking, embedding, or retrieval.
type Hypothesis struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ClientID  string    `json:"client_id" gorm:"type:varchar(36);not null;index"`
	Client    Client    `json:"-" gorm:"foreignKey:ClientID"`
	MeetingID *string   `json:"meeting_id" gorm:"type:varchar(36);index"`
	Meeting   *Meeting  `json:"meeting,omitempty" gorm:"foreignKey:MeetingID"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Status    string    `json:"status" gorm:"type:varchar(32);not null;default:'open'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Hypothesis) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

func (Hypothesis) TableName() string { return "hypotheses" }
