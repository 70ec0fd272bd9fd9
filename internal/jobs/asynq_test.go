package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndexer struct {
	indexed []string
	err     error
}

func (s *stubIndexer) IndexMeeting(ctx context.Context, meetingID string) error {
	if s.err != nil {
		return s.err
	}
	s.indexed = append(s.indexed, meetingID)
	return nil
}

func TestHandleIndexMeeting_DecodesPayloadAndCallsIndexer(t *testing.T) {
	indexer := &stubIndexer{}
	srv := &Server{indexer: indexer}

	payload, err := json.Marshal(indexMeetingPayload{MeetingID: "m-42"})
	require.NoError(t, err)
	task := asynq.NewTask(TypeIndexMeeting, payload)

	err = srv.handleIndexMeeting(context.Background(), task)

	require.NoError(t, err)
	assert.Equal(t, []string{"m-42"}, indexer.indexed)
}

func TestHandleIndexMeeting_PropagatesIndexerError(t *testing.T) {
	indexer := &stubIndexer{err: assert.AnError}
	srv := &Server{indexer: indexer}

	payload, _ := json.Marshal(indexMeetingPayload{MeetingID: "m-1"})
	task := asynq.NewTask(TypeIndexMeeting, payload)

	err := srv.handleIndexMeeting(context.Background(), task)

	require.Error(t, err)
}
