package interfaces

import "context"

// EntityGraph mirrors client-linking decisions into a property graph so a
// future relationship-aware retrieval mode has ingest-time data to build on.
// Read paths are not part of the core retrieval contract.
type EntityGraph interface {
	LinkClientToMeeting(ctx context.Context, clientID, meetingID string) error
	LinkClientToChatRoom(ctx context.Context, clientID string, chatExternalID int64) error
}

// ObjectStorage archives raw payloads (transcripts, chat-export batches)
// under a backend-specific key.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// SettingCache fronts the Setting table with a short-TTL cache. A miss falls
// through to the Store; Setting-table values are still re-read per
// retrieval, just cheaply.
type SettingCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Invalidate(ctx context.Context, key string) error
}

// KeywordIndex is the optional secondary retriever consulted alongside the
// vector search when enabled by configuration.
type KeywordIndex interface {
	SearchChats(ctx context.Context, query string, limit int) ([]string, error) // returns message ids
}
