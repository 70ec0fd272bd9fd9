package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	apperrors "github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// completedEventType is the only webhook event type the ingestor processes;
// every other event type is a silent no-op.
const completedEventType = "Transcription completed"

// Dispatcher hands an oversized transcript off to the background job queue
// instead of indexing it inline. nil disables the large-transcript path and
// everything indexes synchronously.
type Dispatcher interface {
	DispatchIndexMeeting(ctx context.Context, meetingID string) error
}

// Ingestor implements the webhook-triggered ingest path and the on-demand /
// reindex indexing operations.
type Ingestor struct {
	store    interfaces.Store
	provider interfaces.TranscriptProvider
	chunker  interfaces.Chunker
	embedder interfaces.Embedder
	archive  interfaces.ObjectStorage // optional, may be nil
	graph    interfaces.EntityGraph   // optional, may be nil

	chunkSize    int
	chunkOverlap int

	// largeTranscriptThreshold is the rune count above which indexing is
	// dispatched to the background queue instead of running inline.
	largeTranscriptThreshold int
	dispatcher               Dispatcher
}

// NewIngestor builds an Ingestor. dispatcher may be nil to always index
// inline; archive may be nil to disable raw-transcript archival; graph may
// be nil to disable client-linking mirror writes.
func NewIngestor(store interfaces.Store, provider interfaces.TranscriptProvider, chunker interfaces.Chunker,
	embedder interfaces.Embedder, chunkSize, chunkOverlap, largeTranscriptThreshold int, dispatcher Dispatcher,
	archive interfaces.ObjectStorage, graph interfaces.EntityGraph,
) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 200
	}
	if largeTranscriptThreshold <= 0 {
		largeTranscriptThreshold = 20000
	}
	return &Ingestor{
		store: store, provider: provider, chunker: chunker, embedder: embedder,
		archive: archive, graph: graph,
		chunkSize: chunkSize, chunkOverlap: chunkOverlap,
		largeTranscriptThreshold: largeTranscriptThreshold, dispatcher: dispatcher,
	}
}

// HandleWebhook processes a {meetingId, eventType, clientReferenceId}
// webhook delivery. Only "Transcription completed" is handled; an existing
// meeting with the same provider id short-circuits the whole operation.
// clientReferenceID, when given, names the client directly instead of
// leaving client resolution to the meeting-title convention.
func (in *Ingestor) HandleWebhook(ctx context.Context, providerMeetingID, eventType string, clientReferenceID *string) error {
	if eventType != completedEventType {
		return nil
	}

	existing, err := in.store.GetMeetingByProviderID(ctx, providerMeetingID)
	if err != nil {
		return fmt.Errorf("check existing meeting: %w", err)
	}
	if existing != nil {
		logger.GetLogger(ctx).WithField("component", "transcript").
			Debugf("meeting for provider id %s already ingested, skipping", providerMeetingID)
		return nil
	}

	fetched, err := in.provider.FetchTranscript(ctx, providerMeetingID)
	if err != nil {
		return fmt.Errorf("fetch transcript %s: %w", providerMeetingID, err)
	}

	flattened := flattenSentences(fetched.Sentences)
	heldAt := time.Unix(fetched.Date, 0).UTC()

	meeting := &types.Meeting{
		ProviderMeetingID: &providerMeetingID,
		Title:             fetched.Title,
		HeldAt:            &heldAt,
		Transcript:        flattened,
	}
	if err := in.resolveClient(ctx, meeting, fetched.Title, clientReferenceID); err != nil {
		logger.GetLogger(ctx).WithField("component", "transcript").
			Warnf("resolve client for meeting: %v", err)
	}
	if err := in.store.CreateMeeting(ctx, meeting); err != nil {
		return fmt.Errorf("persist meeting: %w", err)
	}

	in.archiveRaw(ctx, meeting.ID, fetched)
	in.linkClient(ctx, meeting)

	if fetched.Summary != "" {
		if err := in.store.CreateSummary(ctx, &types.Summary{
			MeetingID: meeting.ID,
			Type:      types.MeetingTypeWorking,
			Narrative: fetched.Summary,
		}); err != nil {
			logger.GetLogger(ctx).WithField("component", "transcript").
				Errorf("persist generated summary for meeting %s: %v", meeting.ID, err)
		}
	}

	return in.dispatchOrIndex(ctx, meeting.ID, flattened)
}

// resolveClient sets meeting.ClientID by preferring an explicit
// clientReferenceID over the meeting-title convention.
func (in *Ingestor) resolveClient(ctx context.Context, meeting *types.Meeting, title string, clientReferenceID *string) error {
	if clientReferenceID != nil && *clientReferenceID != "" {
		client, err := in.store.GetClientByID(ctx, *clientReferenceID)
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Code == apperrors.ErrNotFound {
			client, err = nil, nil
		}
		if err != nil {
			return fmt.Errorf("resolve client reference %s: %w", *clientReferenceID, err)
		}
		if client != nil {
			meeting.ClientID = &client.ID
			return nil
		}
	}

	client, err := in.resolveClientFromTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("resolve client from meeting title %q: %w", title, err)
	}
	if client != nil {
		meeting.ClientID = &client.ID
	}
	return nil
}

// resolveClientFromTitle looks up an already-registered client by the
// canonical name convention meeting titles follow: the token preceding the
// first " - " separator. A title without that separator, or naming no
// registered client, resolves to (nil, nil) rather than an error.
func (in *Ingestor) resolveClientFromTitle(ctx context.Context, title string) (*types.Client, error) {
	parts := strings.SplitN(title, " - ", 2)
	candidate := strings.TrimSpace(parts[0])
	if len(candidate) <= 2 {
		return nil, nil
	}
	client, err := in.store.GetClientByName(ctx, candidate)
	if appErr, ok := apperrors.IsAppError(err); ok && appErr.Code == apperrors.ErrNotFound {
		return nil, nil
	}
	return client, err
}

// archiveRaw best-effort archives the raw fetched transcript payload
// alongside the indexed chunks; archival is supplemental and a failure here
// never blocks ingestion.
func (in *Ingestor) archiveRaw(ctx context.Context, meetingID string, fetched *interfaces.Transcript) {
	if in.archive == nil {
		return
	}
	data, err := json.Marshal(fetched)
	if err != nil {
		logger.GetLogger(ctx).WithField("component", "transcript").
			Errorf("marshal raw transcript for meeting %s: %v", meetingID, err)
		return
	}
	key := fmt.Sprintf("meetings/%s/transcript.json", meetingID)
	if err := in.archive.Put(ctx, key, data); err != nil {
		logger.GetLogger(ctx).WithField("component", "transcript").
			Warnf("archive raw transcript for meeting %s: %v", meetingID, err)
	}
}

// linkClient mirrors a client/meeting association into the entity graph
// when both a client and a graph are configured; this never blocks
// ingestion on graph-write failure.
func (in *Ingestor) linkClient(ctx context.Context, meeting *types.Meeting) {
	if in.graph == nil || meeting.ClientID == nil {
		return
	}
	if err := in.graph.LinkClientToMeeting(ctx, *meeting.ClientID, meeting.ID); err != nil {
		logger.GetLogger(ctx).WithField("component", "transcript").
			Warnf("link client %s to meeting %s: %v", *meeting.ClientID, meeting.ID, err)
	}
}

// flattenSentences joins speaker turns into "<speaker>: <text>" lines.
func flattenSentences(sentences []interfaces.TranscriptSentence) string {
	lines := make([]string, len(sentences))
	for i, s := range sentences {
		lines[i] = fmt.Sprintf("%s: %s", s.SpeakerName, s.Text)
	}
	return strings.Join(lines, "\n")
}

// dispatchOrIndex routes to the background queue when the transcript
// exceeds the configured size, otherwise indexes inline.
func (in *Ingestor) dispatchOrIndex(ctx context.Context, meetingID, transcript string) error {
	if in.dispatcher != nil && len([]rune(transcript)) > in.largeTranscriptThreshold {
		return in.dispatcher.DispatchIndexMeeting(ctx, meetingID)
	}
	return in.IndexMeeting(ctx, meetingID)
}

// IndexMeeting chunks, embeds, and inserts MeetingEmbedding rows for the
// given meeting. A meeting already fully indexed (embedding count matches
// the chunk count that would be produced) is skipped.
func (in *Ingestor) IndexMeeting(ctx context.Context, meetingID string) error {
	meeting, err := in.store.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	if meeting == nil {
		return fmt.Errorf("meeting %s not found", meetingID)
	}

	chunks := in.chunker.Chunk(meeting.Transcript, in.chunkSize, in.chunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	existing, err := in.store.CountMeetingEmbeddings(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("count existing embeddings for meeting %s: %w", meetingID, err)
	}
	if int(existing) == len(chunks) {
		return nil
	}

	vectors, err := in.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed meeting %s: %w", meetingID, err)
	}

	rows := make([]*types.MeetingEmbedding, len(chunks))
	for i, chunk := range chunks {
		rows[i] = &types.MeetingEmbedding{
			MeetingID:  meetingID,
			ChunkIndex: i,
			ChunkText:  chunk,
			Embedding:  pgvector.NewVector(vectors[i]),
		}
	}

	if err := in.store.InsertMeetingEmbeddings(ctx, rows); err != nil {
		return fmt.Errorf("insert embeddings for meeting %s: %w", meetingID, err)
	}
	return nil
}

// ReindexMeeting is the explicit destructive operation: delete every
// MeetingEmbedding row for the meeting, then index from scratch.
func (in *Ingestor) ReindexMeeting(ctx context.Context, meetingID string) error {
	if _, err := in.store.DeleteMeetingEmbeddings(ctx, meetingID); err != nil {
		return fmt.Errorf("delete existing embeddings for meeting %s: %w", meetingID, err)
	}
	return in.IndexMeeting(ctx, meetingID)
}
