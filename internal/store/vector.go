package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	apperrors "github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/types"
)

// errAlreadyIngested is an internal sentinel used to abort the save-and-index
// transaction without treating a duplicate delivery as a failure.
var errAlreadyIngested = errors.New("message already ingested")

// SaveAndIndexChatMessage runs the save-and-index path in one transaction:
// dedup on (chat, external_id), insert the message, embed and store the
// vector, advance the room cursor to max(current, external_id), commit. If
// embed fails the whole unit rolls back; the next reconciler pass retries.
func (s *Store) SaveAndIndexChatMessage(
	ctx context.Context,
	msg *types.ChatMessage,
	embed func(ctx context.Context, text string) ([]float32, error),
) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing types.ChatMessage
		err := tx.Where("chat_external_id = ? AND external_id = ?", msg.ChatExternalID, msg.ExternalID).
			First(&existing).Error
		if err == nil {
			return errAlreadyIngested
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		text := ""
		if msg.Text != nil {
			text = *msg.Text
		}
		vector, err := embed(ctx, text)
		if err != nil {
			return err
		}

		embedding := &types.ChatEmbedding{
			MessageID:  msg.ID,
			ChunkIndex: 0,
			ChunkText:  text,
			Embedding:  pgvector.NewVector(vector),
		}
		if err := tx.Create(embedding).Error; err != nil {
			return err
		}

		return tx.Model(&types.ChatRoom{}).
			Where("external_id = ? AND last_synced_message_id < ?", msg.ChatExternalID, msg.ExternalID).
			Update("last_synced_message_id", msg.ExternalID).Error
	})

	if errors.Is(err, errAlreadyIngested) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewTransientIOError("save-and-index chat message failed", err)
	}
	return true, nil
}

// meetingHitRow is the raw scan target for SearchMeetingsDiversified.
type meetingHitRow struct {
	MeetingID  string
	Title      string
	HeldAt     *time.Time
	ChunkIndex int
	ChunkText  string
	Similarity float64
}

// chatHitRow is the raw scan target for SearchChatsDiversified.
type chatHitRow struct {
	ChatExternalID int64
	ChatTitle      string
	ClientName     *string
	MessageID      string
	SenderName     *string
	Timestamp      time.Time
	ChunkText      string
	Similarity     float64
}

// SearchMeetingsDiversified implements the diversified nearest-neighbor
// search over the meeting corpus (see the cascade policy for how callers
// choose p). The query vector is always bound as a driver parameter — never
// string-formatted into the SQL text.
func (s *Store) SearchMeetingsDiversified(
	ctx context.Context, query []float32, p types.DiversifiedSearchParams,
) ([]types.MeetingHit, error) {
	vec := pgvector.NewVector(query)

	var whereClauses []string
	args := []interface{}{vec, vec}

	if p.TitleFilter != nil {
		whereClauses = append(whereClauses, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(string(*p.TitleFilter))+"%")
	}
	if p.ClientID != nil {
		whereClauses = append(whereClauses, "m.client_id = ?")
		args = append(args, *p.ClientID)
	}
	if p.DateRange != nil {
		whereClauses = append(whereClauses, "m.held_at BETWEEN ? AND ?")
		args = append(args, p.DateRange.Start, p.DateRange.End)
	}

	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	maxPerGroup := boundedOrMax(p.MaxPerGroup)
	maxTotal := boundedOrMax(p.MaxTotal)
	args = append(args, maxPerGroup, p.MinSimilarity, maxTotal)

	sql := fmt.Sprintf(`
WITH ranked AS (
	SELECT me.meeting_id, me.chunk_index, me.chunk_text,
	       (1 - (me.embedding <=> ?)) AS similarity,
	       ROW_NUMBER() OVER (PARTITION BY me.meeting_id ORDER BY me.embedding <=> ?) AS rn,
	       m.title, m.held_at
	FROM meeting_embeddings me
	JOIN meetings m ON m.id = me.meeting_id
	%s
)
SELECT meeting_id, title, held_at, chunk_index, chunk_text, similarity
FROM ranked
WHERE rn <= ? AND similarity > ?
ORDER BY similarity DESC
LIMIT ?`, where)

	var rows []meetingHitRow
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.NewTransientIOError("diversified meeting search failed", err)
	}

	hits := make([]types.MeetingHit, len(rows))
	for i, r := range rows {
		hits[i] = types.MeetingHit{
			MeetingID:  r.MeetingID,
			Title:      r.Title,
			HeldAt:     r.HeldAt,
			ChunkIndex: r.ChunkIndex,
			ChunkText:  r.ChunkText,
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

// SearchChatsDiversified implements the diversified nearest-neighbor search
// over the chat corpus.
func (s *Store) SearchChatsDiversified(
	ctx context.Context, query []float32, p types.DiversifiedSearchParams,
) ([]types.ChatHit, error) {
	vec := pgvector.NewVector(query)

	var whereClauses []string
	args := []interface{}{vec, vec}

	if p.ChatClientName != nil {
		whereClauses = append(whereClauses, "cr.client_name = ?")
		args = append(args, string(*p.ChatClientName))
	}
	if p.DateRange != nil {
		whereClauses = append(whereClauses, "cm.timestamp BETWEEN ? AND ?")
		args = append(args, p.DateRange.Start, p.DateRange.End)
	}

	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	maxPerGroup := boundedOrMax(p.MaxPerGroup)
	maxTotal := boundedOrMax(p.MaxTotal)
	args = append(args, maxPerGroup, p.MinSimilarity, maxTotal)

	sql := fmt.Sprintf(`
WITH ranked AS (
	SELECT cr.external_id AS chat_external_id, cr.title AS chat_title, cr.client_name,
	       cm.id AS message_id, cm.sender_name, cm.timestamp,
	       ce.chunk_text,
	       (1 - (ce.embedding <=> ?)) AS similarity,
	       ROW_NUMBER() OVER (PARTITION BY cr.external_id ORDER BY ce.embedding <=> ?) AS rn
	FROM chat_embeddings ce
	JOIN chat_messages cm ON cm.id = ce.message_id
	JOIN chat_rooms cr ON cr.external_id = cm.chat_external_id
	%s
)
SELECT chat_external_id, chat_title, client_name, message_id, sender_name, timestamp, chunk_text, similarity
FROM ranked
WHERE rn <= ? AND similarity > ?
ORDER BY similarity DESC
LIMIT ?`, where)

	var rows []chatHitRow
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.NewTransientIOError("diversified chat search failed", err)
	}

	hits := make([]types.ChatHit, len(rows))
	for i, r := range rows {
		hits[i] = types.ChatHit{
			ChatExternalID: r.ChatExternalID,
			ChatTitle:      r.ChatTitle,
			ClientName:     r.ClientName,
			MessageID:      r.MessageID,
			SenderName:     r.SenderName,
			Timestamp:      r.Timestamp,
			ChunkText:      r.ChunkText,
			Similarity:     r.Similarity,
		}
	}
	return hits, nil
}

// GetChatHitsByMessageIDs resolves the bare message ids a keyword-index
// search returns into full ChatHit rows, scoring each against query so the
// caller can merge keyword hits into a vector-ranked result set.
func (s *Store) GetChatHitsByMessageIDs(
	ctx context.Context, messageIDs []string, query []float32,
) ([]types.ChatHit, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(query)

	sql := `
SELECT cr.external_id AS chat_external_id, cr.title AS chat_title, cr.client_name,
       cm.id AS message_id, cm.sender_name, cm.timestamp,
       ce.chunk_text,
       (1 - (ce.embedding <=> ?)) AS similarity
FROM chat_embeddings ce
JOIN chat_messages cm ON cm.id = ce.message_id
JOIN chat_rooms cr ON cr.external_id = cm.chat_external_id
WHERE cm.id IN ?
ORDER BY similarity DESC`

	var rows []chatHitRow
	if err := s.db.WithContext(ctx).Raw(sql, vec, messageIDs).Scan(&rows).Error; err != nil {
		return nil, apperrors.NewTransientIOError("resolve keyword chat hits failed", err)
	}

	hits := make([]types.ChatHit, len(rows))
	for i, r := range rows {
		hits[i] = types.ChatHit{
			ChatExternalID: r.ChatExternalID,
			ChatTitle:      r.ChatTitle,
			ClientName:     r.ClientName,
			MessageID:      r.MessageID,
			SenderName:     r.SenderName,
			Timestamp:      r.Timestamp,
			ChunkText:      r.ChunkText,
			Similarity:     r.Similarity,
		}
	}
	return hits, nil
}

// boundedOrMax caps a caller-supplied bound at a large sentinel when the
// caller asked for an effectively unrestricted search (params <= 0), so the
// SQL LIMIT/rn comparisons stay well-defined.
func boundedOrMax(n int) int {
	if n <= 0 {
		return 1 << 30
	}
	return n
}
