package interfaces

import "context"

// Embedder turns text into fixed-dimension vectors. Implementations batch to
// an upstream limit internally; callers need not chunk their input list.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Chunker splits long text into bounded, overlapping passages.
type Chunker interface {
	Chunk(text string, chunkSize, overlap int) []string
}

// ChatMessage is the minimal shape the chat session reports for a message;
// kept distinct from types.ChatMessage so the network boundary does not leak
// persistence concerns.
type ChatMessage struct {
	ExternalID int64
	ChatID     int64
	SenderName string
	Text       string
	HasMedia   bool
	MediaTag   string
	Timestamp  int64 // unix seconds
}

// ChatSession is the narrow, read-only contract the ingestor consumes from
// the chat network. It MUST NOT expose any mutating capability: no send,
// edit, delete, or reaction method exists on this interface by design.
type ChatSession interface {
	// Connect authenticates using a serialized session string.
	Connect(ctx context.Context) error
	// Disconnect tears down the connection; used on shutdown.
	Disconnect(ctx context.Context) error
	// Self returns the authenticated identity, used for health checks.
	Self(ctx context.Context) (string, error)
	// IterMessages iterates messages in room newer than minExternalID,
	// oldest first.
	IterMessages(ctx context.Context, roomID int64, minExternalID int64) ([]ChatMessage, error)
	// Subscribe registers a callback invoked for every new message in one
	// of roomIDs. The returned function cancels the subscription.
	Subscribe(ctx context.Context, roomIDs []int64, onMessage func(ChatMessage)) (func(), error)
}

// TranscriptSentence is one speaker turn in a fetched transcript.
type TranscriptSentence struct {
	SpeakerName string
	Text        string
	StartTime   float64
	EndTime     float64
}

// Transcript is the structured payload the transcript provider returns for a
// meeting id.
type Transcript struct {
	ID        string
	Title     string
	Date      int64 // unix seconds
	Sentences []TranscriptSentence
	Summary   string
}

// TranscriptProvider fetches a transcript by provider-assigned meeting id.
type TranscriptProvider interface {
	FetchTranscript(ctx context.Context, providerMeetingID string) (*Transcript, error)
}

// ChatTurn is one message in a generative-model conversation.
type ChatTurn struct {
	Role    string // "system" or "user"
	Content string
}

// GenerativeModel accepts a short ordered list of chat turns and returns the
// model's plain-text reply.
type GenerativeModel interface {
	Generate(ctx context.Context, turns []ChatTurn) (string, error)
}
