// Package interfaces collects the narrow capability contracts shared between
// production bindings and test doubles: persistence, embedding, chunking,
// the chat network, the transcript provider, and the generative model.
package interfaces

import (
	"context"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

// Store is the only component permitted to hold a database handle. Every
// other component receives a Store and never touches SQL directly.
type Store interface {
	// Clients
	CreateClient(ctx context.Context, c *types.Client) error
	GetClientByID(ctx context.Context, id string) (*types.Client, error)
	GetClientByName(ctx context.Context, name string) (*types.Client, error)
	ListClientNames(ctx context.Context) ([]string, error)

	// Meetings
	CreateMeeting(ctx context.Context, m *types.Meeting) error
	GetMeetingByID(ctx context.Context, id string) (*types.Meeting, error)
	GetMeetingByProviderID(ctx context.Context, providerID string) (*types.Meeting, error)
	ListMeetingTitles(ctx context.Context) ([]string, error)
	ListMeetings(ctx context.Context, ids []string) ([]*types.Meeting, error)

	// Summaries
	CreateSummary(ctx context.Context, s *types.Summary) error

	// Meeting embeddings
	InsertMeetingEmbeddings(ctx context.Context, rows []*types.MeetingEmbedding) error
	DeleteMeetingEmbeddings(ctx context.Context, meetingID string) (int64, error)
	CountMeetingEmbeddings(ctx context.Context, meetingID string) (int64, error)
	CountAllEmbeddings(ctx context.Context) (int64, error)
	CountIndexedMeetings(ctx context.Context) (int64, error)
	GetMeetingChunksInOrder(ctx context.Context, meetingID string, limit int) ([]*types.MeetingEmbedding, error)

	// Chat rooms
	GetChatRoom(ctx context.Context, externalID int64) (*types.ChatRoom, error)
	ListActiveChatRooms(ctx context.Context) ([]*types.ChatRoom, error)
	ListChatClientNames(ctx context.Context) ([]string, error)
	AdvanceChatRoomCursor(ctx context.Context, externalID int64, newWatermark int64) error

	// Chat messages and embeddings, transactionally
	// SaveAndIndexChatMessage runs the save-and-index path from a single
	// transaction: dedup check, message insert, embedding insert, cursor
	// advance. Returns (inserted=false, nil) when the message already
	// existed.
	SaveAndIndexChatMessage(ctx context.Context,
		msg *types.ChatMessage, embed func(ctx context.Context, text string) ([]float32, error),
	) (inserted bool, err error)

	// Settings
	GetSetting(ctx context.Context, key string) (*types.Setting, error)
	SetSetting(ctx context.Context, s *types.Setting) error

	// Diversified search caps how many chunks from the same meeting/chat can
	// appear in one result set. The query vector is always bound as a
	// parameter, never string-formatted into SQL.
	SearchMeetingsDiversified(ctx context.Context, query []float32, p types.DiversifiedSearchParams) ([]types.MeetingHit, error)
	SearchChatsDiversified(ctx context.Context, query []float32, p types.DiversifiedSearchParams) ([]types.ChatHit, error)

	// GetChatHitsByMessageIDs resolves a keyword-index hit list (bare message
	// ids) into full ChatHit rows, scored against query for consistent
	// ranking alongside the vector cascade's own hits.
	GetChatHitsByMessageIDs(ctx context.Context, messageIDs []string, query []float32) ([]types.ChatHit, error)
}
