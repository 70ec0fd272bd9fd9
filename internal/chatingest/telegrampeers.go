package chatingest

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// onNewMessage is the dispatcher callback installed once at client
// construction. It is invoked for every incoming message regardless of
// whether Subscribe has ever been called; it drops anything outside the
// currently subscribed room set or arriving before a handler is registered.
func (t *TelegramSession) onNewMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
	tm, ok := u.Message.(*tg.Message)
	if !ok {
		return nil
	}

	roomID, ok := peerExternalID(tm.PeerID)
	if !ok {
		return nil
	}

	t.subMu.RLock()
	rooms, handler := t.subRooms, t.subHandler
	t.subMu.RUnlock()
	if handler == nil || !rooms[roomID] {
		return nil
	}

	handler(toChatMessage(roomID, tm, e.Users))
	return nil
}

// resolvePeer turns a bare room external ID into the tg.InputPeerClass
// MTProto calls require, caching the result. Channels and supergroups need
// an AccessHash alongside their ID, which the dialog list is the only
// available source for since chat rooms are stored without one.
func (t *TelegramSession) resolvePeer(ctx context.Context, api *tg.Client, roomID int64) (tg.InputPeerClass, error) {
	t.peerMu.Lock()
	if peer, ok := t.peerCache[roomID]; ok {
		t.peerMu.Unlock()
		return peer, nil
	}
	t.peerMu.Unlock()

	resp, err := api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		return nil, fmt.Errorf("get dialogs: %w", err)
	}

	chats, _ := dialogChats(resp)
	for _, ch := range chats {
		switch v := ch.(type) {
		case *tg.Chat:
			if int64(v.ID) == roomID {
				peer := &tg.InputPeerChat{ChatID: v.ID}
				t.cachePeer(roomID, peer)
				return peer, nil
			}
		case *tg.Channel:
			if int64(v.ID) == roomID {
				peer := &tg.InputPeerChannel{ChannelID: v.ID, AccessHash: v.AccessHash}
				t.cachePeer(roomID, peer)
				return peer, nil
			}
		}
	}

	return nil, fmt.Errorf("room %d not found in dialog list", roomID)
}

func (t *TelegramSession) cachePeer(roomID int64, peer tg.InputPeerClass) {
	t.peerMu.Lock()
	t.peerCache[roomID] = peer
	t.peerMu.Unlock()
}

// dialogChats extracts the Chats slice from whichever concrete
// messages.Dialogs variant the server returned.
func dialogChats(resp tg.MessagesDialogsClass) ([]tg.ChatClass, []tg.UserClass) {
	switch v := resp.(type) {
	case *tg.MessagesDialogs:
		return v.Chats, v.Users
	case *tg.MessagesDialogsSlice:
		return v.Chats, v.Users
	default:
		return nil, nil
	}
}

// messagesAndUsers extracts the message list and sender lookup table from
// whichever concrete messages.Messages variant the server returned.
// Notified-only responses yield no messages.
func messagesAndUsers(resp tg.MessagesMessagesClass) ([]*tg.Message, map[int64]*tg.User) {
	var raw []tg.MessageClass
	var rawUsers []tg.UserClass

	switch v := resp.(type) {
	case *tg.MessagesMessages:
		raw, rawUsers = v.Messages, v.Users
	case *tg.MessagesMessagesSlice:
		raw, rawUsers = v.Messages, v.Users
	case *tg.MessagesChannelMessages:
		raw, rawUsers = v.Messages, v.Users
	case *tg.MessagesMessagesNotModified:
		return nil, nil
	}

	users := make(map[int64]*tg.User, len(rawUsers))
	for _, u := range rawUsers {
		if user, ok := u.(*tg.User); ok {
			users[user.ID] = user
		}
	}

	messages := make([]*tg.Message, 0, len(raw))
	for _, m := range raw {
		if tm, ok := m.(*tg.Message); ok {
			messages = append(messages, tm)
		}
	}
	return messages, users
}

// toChatMessage converts a raw MTProto message into the domain-neutral
// interfaces.ChatMessage shape the ingestor operates on.
func toChatMessage(roomID int64, m *tg.Message, users map[int64]*tg.User) interfaces.ChatMessage {
	var sender string
	if fromID, ok := peerExternalID(m.FromID); ok {
		if u, ok := users[fromID]; ok {
			sender = userDisplayName(u)
		}
	}

	return interfaces.ChatMessage{
		ExternalID: int64(m.ID),
		ChatID:     roomID,
		SenderName: sender,
		Text:       m.Message,
		HasMedia:   m.Media != nil,
		MediaTag:   mediaTag(m.Media),
		Timestamp:  int64(m.Date),
	}
}

func userDisplayName(u *tg.User) string {
	if u.Username != "" {
		return u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}

// peerExternalID extracts the bare integer ID MTProto uses to identify a
// chat, channel, or user peer, regardless of which concrete variant it is.
func peerExternalID(p tg.PeerClass) (int64, bool) {
	switch v := p.(type) {
	case *tg.PeerChat:
		return int64(v.ChatID), true
	case *tg.PeerChannel:
		return int64(v.ChannelID), true
	case *tg.PeerUser:
		return int64(v.UserID), true
	default:
		return 0, false
	}
}

// mediaTag derives a short tag describing a message's attached media, if
// any; it never needs to resolve the media's bytes.
func mediaTag(m tg.MessageMediaClass) string {
	switch m.(type) {
	case nil:
		return ""
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		return "document"
	case *tg.MessageMediaGeo, *tg.MessageMediaGeoLive:
		return "location"
	case *tg.MessageMediaContact:
		return "contact"
	case *tg.MessageMediaPoll:
		return "poll"
	default:
		return "media"
	}
}

func reverseMessages(m []interfaces.ChatMessage) {
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
}
