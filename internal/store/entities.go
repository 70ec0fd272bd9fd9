package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/types"
)

func (s *Store) CreateClient(ctx context.Context, c *types.Client) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) GetClientByID(ctx context.Context, id string) (*types.Client, error) {
	var c types.Client
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "client")
	}
	return &c, nil
}

func (s *Store) GetClientByName(ctx context.Context, name string) (*types.Client, error) {
	var c types.Client
	if err := s.db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		return nil, wrapNotFound(err, "client")
	}
	return &c, nil
}

func (s *Store) ListClientNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&types.Client{}).Distinct().Pluck("name", &names).Error
	return names, err
}

func (s *Store) CreateMeeting(ctx context.Context, m *types.Meeting) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *Store) GetMeetingByID(ctx context.Context, id string) (*types.Meeting, error) {
	var m types.Meeting
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "meeting")
	}
	return &m, nil
}

func (s *Store) GetMeetingByProviderID(ctx context.Context, providerID string) (*types.Meeting, error) {
	var m types.Meeting
	err := s.db.WithContext(ctx).First(&m, "provider_meeting_id = ?", providerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) ListMeetingTitles(ctx context.Context) ([]string, error) {
	var titles []string
	err := s.db.WithContext(ctx).Model(&types.Meeting{}).Distinct().Pluck("title", &titles).Error
	return titles, err
}

func (s *Store) ListMeetings(ctx context.Context, ids []string) ([]*types.Meeting, error) {
	var meetings []*types.Meeting
	q := s.db.WithContext(ctx)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	err := q.Find(&meetings).Error
	return meetings, err
}

func (s *Store) CreateSummary(ctx context.Context, sm *types.Summary) error {
	return s.db.WithContext(ctx).Create(sm).Error
}

func (s *Store) InsertMeetingEmbeddings(ctx context.Context, rows []*types.MeetingEmbedding) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

func (s *Store) DeleteMeetingEmbeddings(ctx context.Context, meetingID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&types.MeetingEmbedding{})
	return res.RowsAffected, res.Error
}

func (s *Store) CountMeetingEmbeddings(ctx context.Context, meetingID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.MeetingEmbedding{}).
		Where("meeting_id = ?", meetingID).Count(&count).Error
	return count, err
}

func (s *Store) CountAllEmbeddings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.MeetingEmbedding{}).Count(&count).Error
	return count, err
}

func (s *Store) CountIndexedMeetings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.MeetingEmbedding{}).
		Distinct("meeting_id").Count(&count).Error
	return count, err
}

func (s *Store) GetMeetingChunksInOrder(ctx context.Context, meetingID string, limit int) ([]*types.MeetingEmbedding, error) {
	var chunks []*types.MeetingEmbedding
	err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("chunk_index ASC").
		Limit(limit).
		Find(&chunks).Error
	return chunks, err
}

func (s *Store) GetChatRoom(ctx context.Context, externalID int64) (*types.ChatRoom, error) {
	var room types.ChatRoom
	if err := s.db.WithContext(ctx).First(&room, "external_id = ?", externalID).Error; err != nil {
		return nil, wrapNotFound(err, "chat room")
	}
	return &room, nil
}

func (s *Store) ListActiveChatRooms(ctx context.Context) ([]*types.ChatRoom, error) {
	var rooms []*types.ChatRoom
	err := s.db.WithContext(ctx).Where("active = ?", true).Find(&rooms).Error
	return rooms, err
}

func (s *Store) ListChatClientNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&types.ChatRoom{}).
		Where("client_name IS NOT NULL AND client_name <> ''").
		Distinct().Pluck("client_name", &names).Error
	return names, err
}

// AdvanceChatRoomCursor moves the watermark forward, never backward.
func (s *Store) AdvanceChatRoomCursor(ctx context.Context, externalID int64, newWatermark int64) error {
	return s.db.WithContext(ctx).Model(&types.ChatRoom{}).
		Where("external_id = ? AND last_synced_message_id < ?", externalID, newWatermark).
		Update("last_synced_message_id", newWatermark).Error
}

func (s *Store) GetSetting(ctx context.Context, key string) (*types.Setting, error) {
	var st types.Setting
	if err := s.db.WithContext(ctx).First(&st, "key = ?", key).Error; err != nil {
		return nil, wrapNotFound(err, "setting")
	}
	return &st, nil
}

func (s *Store) SetSetting(ctx context.Context, st *types.Setting) error {
	return s.db.WithContext(ctx).Save(st).Error
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(what + " not found")
	}
	return err
}
