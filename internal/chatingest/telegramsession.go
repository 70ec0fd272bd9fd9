package chatingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// TelegramSession implements interfaces.ChatSession over gotd/td's MTProto
// client. It exposes only the read-only surface ChatSession requires: no
// send, edit, delete, or reaction method is reachable through it.
type TelegramSession struct {
	apiID, apiHash string
	sessionStorage session.Storage

	mu     sync.Mutex
	client *telegram.Client
	cancel context.CancelFunc
	done   chan error

	// dispatcher is wired as the client's update handler once, at
	// construction time, and stays registered across reconnects; Subscribe
	// only ever updates subRooms/subHandler below.
	dispatcher tg.UpdateDispatcher

	subMu      sync.RWMutex
	subRooms   map[int64]bool
	subHandler func(interfaces.ChatMessage)

	peerMu    sync.Mutex
	peerCache map[int64]tg.InputPeerClass
}

var _ interfaces.ChatSession = (*TelegramSession)(nil)

// NewTelegramSession builds a session backed by a previously authorized
// session string; it never performs interactive login.
func NewTelegramSession(apiID int, apiHash, sessionString string) *TelegramSession {
	t := &TelegramSession{
		apiID:          fmt.Sprintf("%d", apiID),
		apiHash:        apiHash,
		sessionStorage: &session.StringStorage{Data: sessionString},
		dispatcher:     tg.NewUpdateDispatcher(),
		peerCache:      map[int64]tg.InputPeerClass{},
	}
	t.dispatcher.OnNewMessage(t.onNewMessage)
	return t
}

func (t *TelegramSession) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	client := telegram.NewClient(parseAPIID(t.apiID), t.apiHash, telegram.Options{
		SessionStorage: t.sessionStorage,
		UpdateHandler:  t.dispatcher,
	})

	done := make(chan error, 1)
	started := make(chan error, 1)
	go func() {
		done <- client.Run(runCtx, func(ctx context.Context) error {
			started <- nil
			<-ctx.Done()
			return nil
		})
	}()

	select {
	case err := <-started:
		if err != nil {
			cancel()
			return err
		}
	case err := <-done:
		cancel()
		return fmt.Errorf("telegram client exited before becoming ready: %w", err)
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	t.client = client
	t.cancel = cancel
	t.done = done
	return nil
}

func (t *TelegramSession) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return nil
	}
	t.cancel()

	select {
	case <-t.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	t.client = nil
	t.cancel = nil
	return nil
}

func (t *TelegramSession) Self(ctx context.Context) (string, error) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return "", fmt.Errorf("not connected")
	}

	api := tg.NewClient(client)
	self, err := api.UsersGetFullUser(ctx, &tg.InputUserSelf{})
	if err != nil {
		return "", fmt.Errorf("get self: %w", err)
	}
	return fmt.Sprintf("%v", self.FullUser.ID), nil
}

// IterMessages walks a room's history forward from minExternalID using
// messages.getHistory, paginating backward from the most recent message
// (MTProto's only iteration order) down to minExternalID, then reversing
// the collected page before returning.
func (t *TelegramSession) IterMessages(ctx context.Context, roomID int64, minExternalID int64) ([]interfaces.ChatMessage, error) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("not connected")
	}

	api := tg.NewClient(client)
	peer, err := t.resolvePeer(ctx, api, roomID)
	if err != nil {
		return nil, fmt.Errorf("resolve room %d: %w", roomID, err)
	}

	const pageSize = 100
	var collected []interfaces.ChatMessage
	offsetID := 0

	for {
		resp, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: offsetID,
			MinID:    int(minExternalID),
			Limit:    pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("get history for room %d: %w", roomID, err)
		}

		msgs, users := messagesAndUsers(resp)
		if len(msgs) == 0 {
			break
		}

		smallestID := 0
		for _, tm := range msgs {
			if int64(tm.ID) <= minExternalID {
				continue
			}
			collected = append(collected, toChatMessage(roomID, tm, users))
			if smallestID == 0 || tm.ID < smallestID {
				smallestID = tm.ID
			}
		}

		if len(msgs) < pageSize || smallestID <= int(minExternalID)+1 {
			break
		}
		offsetID = smallestID
	}

	reverseMessages(collected)
	return collected, nil
}

// Subscribe registers onMessage to receive every live update reported for
// one of roomIDs; the underlying dispatcher is wired once at construction,
// so subsequent Subscribe calls just swap the active filter/callback pair.
func (t *TelegramSession) Subscribe(ctx context.Context, roomIDs []int64, onMessage func(interfaces.ChatMessage)) (func(), error) {
	rooms := make(map[int64]bool, len(roomIDs))
	for _, id := range roomIDs {
		rooms[id] = true
	}

	t.subMu.Lock()
	t.subRooms = rooms
	t.subHandler = onMessage
	t.subMu.Unlock()

	unsubscribe := func() {
		t.subMu.Lock()
		t.subRooms = nil
		t.subHandler = nil
		t.subMu.Unlock()
	}
	return unsubscribe, nil
}

func parseAPIID(s string) int {
	var n int
	fmt.Sscanf(s, "%d", &n)
	return n
}
