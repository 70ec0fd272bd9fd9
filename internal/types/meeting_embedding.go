package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// MeetingEmbedding is a single vector chunk of a meeting transcript. Chunk
// indices are dense 0..N-1 per meeting; a meeting is never re-indexed
// incrementally, only replaced atomically.
type MeetingEmbedding struct {
	ID         string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	MeetingID  string          `json:"meeting_id" gorm:"type:varchar(36);not null;index:idx_meeting_chunk,unique,priority:1"`
	Meeting    Meeting         `json:"-" gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE"`
	ChunkIndex int             `json:"chunk_index" gorm:"not null;index:idx_meeting_chunk,unique,priority:2"`
	ChunkText  string          `json:"chunk_text" gorm:"type:text;not null"`
	Embedding  pgvector.Vector `json:"-" gorm:"type:vector(1536);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (e *MeetingEmbedding) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (MeetingEmbedding) TableName() string { return "meeting_embeddings" }
