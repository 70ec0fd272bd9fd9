package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a business counterpart the consultant works with. Meetings and
// chat rooms optionally reference one, either through administrative linking
// or through the client-name heuristics in the entity graph.
type Client struct {
	ID string `json:"id" gorm:"type:varchar(36);primaryKey"`
	// Name is the canonical client name; unique so linking heuristics can
	// upsert on it without creating duplicates.
	Name string `json:"name" gorm:"type:varchar(255);uniqueIndex"`
	// ExternalIDs holds identifiers in other systems (CRM, chat network,
	// task tracker) keyed by system name.
	ExternalIDs JSON      `json:"external_ids" gorm:"type:json"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a surrogate id to new clients.
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (Client) TableName() string { return "clients" }
