package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// ChatEmbedding is one vector per sufficiently long chat message. Chunk text
// equals the message text when the message is short enough to index as a
// single chunk; chunk index defaults to 0.
type ChatEmbedding struct {
	ID         string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	MessageID  string          `json:"message_id" gorm:"type:varchar(36);not null;index"`
	Message    ChatMessage     `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	ChunkIndex int             `json:"chunk_index" gorm:"not null;default:0"`
	ChunkText  string          `json:"chunk_text" gorm:"type:text;not null"`
	Embedding  pgvector.Vector `json:"-" gorm:"type:vector(1536);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (e *ChatEmbedding) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (ChatEmbedding) TableName() string { return "chat_embeddings" }
