package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a prospective client record, predating conversion into a Client.
// Outer-shell CRUD entity; it does not participate in retrieval.
type Lead struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Source    string    `json:"source" gorm:"type:varchar(128)"`
	Notes     string    `json:"notes" gorm:"type:text"`
	Converted bool      `json:"converted" gorm:"not null;default:false"`
	ClientID  *string   `json:"client_id" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (Lead) TableName() string { return "leads" }
