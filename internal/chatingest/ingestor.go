// Package chatingest runs the long-lived chat ingestion process: a live
// event handler fed by the chat network's subscription, and a periodic
// reconciler that walks every active room forward from its stored cursor.
package chatingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// ErrAuthFailed is returned by Run when the chat session rejects the
// configured credentials; it is fatal and must terminate the process.
var ErrAuthFailed = errors.New("chat network authorization failed")

const (
	reconnectBackoffCap = time.Minute
	shutdownGrace       = 5 * time.Second
)

// Ingestor owns one ChatSession and drives the live handler and reconciler
// against it.
type Ingestor struct {
	store    interfaces.Store
	session  interfaces.ChatSession
	embedder interfaces.Embedder
	archive  interfaces.ObjectStorage // optional, may be nil
	graph    interfaces.EntityGraph   // optional, may be nil

	reconcileInterval time.Duration
}

// New builds an Ingestor. archive may be nil to disable raw-payload
// archival on reconciliation passes; graph may be nil to disable
// client-linking mirror writes.
func New(store interfaces.Store, session interfaces.ChatSession, embedder interfaces.Embedder,
	archive interfaces.ObjectStorage, graph interfaces.EntityGraph, reconcileInterval time.Duration,
) *Ingestor {
	if reconcileInterval <= 0 {
		reconcileInterval = time.Hour
	}
	return &Ingestor{
		store: store, session: session, embedder: embedder,
		archive: archive, graph: graph, reconcileInterval: reconcileInterval,
	}
}

// embed adapts the Embedder's batch contract to the single-text signature
// the Store's save-and-index transaction expects.
func (in *Ingestor) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := in.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// handleMessage runs the save-and-index path for one message reported by
// the chat network, dropping anything shorter than the centralized minimum.
func (in *Ingestor) handleMessage(ctx context.Context, chatExternalID int64, m interfaces.ChatMessage) error {
	if len([]rune(m.Text)) < types.MinChatTextLength {
		return nil
	}

	var mediaTag *string
	if m.MediaTag != "" {
		mediaTag = &m.MediaTag
	}
	var senderName *string
	if m.SenderName != "" {
		senderName = &m.SenderName
	}
	var text *string
	if m.Text != "" {
		text = &m.Text
	}

	msg := &types.ChatMessage{
		ChatExternalID: chatExternalID,
		ExternalID:     m.ExternalID,
		Timestamp:      time.Unix(m.Timestamp, 0).UTC(),
		SenderName:     senderName,
		Text:           text,
		HasMedia:       m.HasMedia,
		MediaTag:       mediaTag,
	}

	inserted, err := in.store.SaveAndIndexChatMessage(ctx, msg, in.embed)
	if err != nil {
		return fmt.Errorf("save and index message %d in chat %d: %w", m.ExternalID, chatExternalID, err)
	}
	if !inserted {
		logger.GetLogger(ctx).WithField("component", "chatingest").
			Debugf("message %d in chat %d already ingested, skipped", m.ExternalID, chatExternalID)
	}
	return nil
}

// reconcileRoom walks one active room forward from its stored cursor,
// re-driving every missing message through the save-and-index path.
// Dedup on (chat, external_id) makes this safe to run concurrently with the
// live handler.
func (in *Ingestor) reconcileRoom(ctx context.Context, room *types.ChatRoom) error {
	in.linkClient(ctx, room)

	messages, err := in.session.IterMessages(ctx, room.ExternalID, room.LastSyncedMessageID)
	if err != nil {
		return fmt.Errorf("iterate messages for chat %d: %w", room.ExternalID, err)
	}
	if len(messages) == 0 {
		return nil
	}

	in.archiveBatch(ctx, room.ExternalID, messages)

	for _, m := range messages {
		if err := in.handleMessage(ctx, room.ExternalID, m); err != nil {
			logger.GetLogger(ctx).WithField("component", "chatingest").
				Errorf("reconcile chat %d: %v", room.ExternalID, err)
		}
	}
	return nil
}

// archiveBatch best-effort archives the raw fetched window before indexing.
// Archival is supplemental: a failure here never blocks indexing.
func (in *Ingestor) archiveBatch(ctx context.Context, chatExternalID int64, messages []interfaces.ChatMessage) {
	if in.archive == nil || len(messages) == 0 {
		return
	}
	key := fmt.Sprintf("chats/%d/catchup-%d.json", chatExternalID, time.Now().Unix())
	data := marshalBatch(messages)
	if err := in.archive.Put(ctx, key, data); err != nil {
		logger.GetLogger(ctx).WithField("component", "chatingest").
			Warnf("archive raw batch for chat %d: %v", chatExternalID, err)
	}
}

// linkClient mirrors a client/chat-room association into the entity graph
// when both a client and a graph are configured; a failure here never
// blocks reconciliation.
func (in *Ingestor) linkClient(ctx context.Context, room *types.ChatRoom) {
	if in.graph == nil || room.ClientID == nil {
		return
	}
	if err := in.graph.LinkClientToChatRoom(ctx, *room.ClientID, room.ExternalID); err != nil {
		logger.GetLogger(ctx).WithField("component", "chatingest").
			Warnf("link client %s to chat room %d: %v", *room.ClientID, room.ExternalID, err)
	}
}

// Reconcile runs one full reconciliation pass over every active room,
// isolating a failure in one room from the rest.
func (in *Ingestor) Reconcile(ctx context.Context) error {
	rooms, err := in.store.ListActiveChatRooms(ctx)
	if err != nil {
		return fmt.Errorf("list active chat rooms: %w", err)
	}
	for _, room := range rooms {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := in.reconcileRoom(ctx, room); err != nil {
			logger.GetLogger(ctx).WithField("component", "chatingest").
				Errorf("reconcile room %d failed: %v", room.ExternalID, err)
		}
	}
	return nil
}
