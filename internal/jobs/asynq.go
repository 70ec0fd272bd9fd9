// Package jobs dispatches and handles the one background task type the
// system needs: indexing a transcript too large to chunk+embed+insert
// inline within the webhook request.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/logger"
)

// TypeIndexMeeting is the asynq task type for a large-transcript indexing
// job, run on the default priority queue.
const TypeIndexMeeting = "transcript:index_meeting"

// queues is the fixed three-tier priority weighting.
var queues = map[string]int{
	"critical": 6,
	"default":  3,
	"low":      1,
}

type indexMeetingPayload struct {
	MeetingID string `json:"meeting_id"`
}

func redisClientOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Client wraps an asynq.Client to enqueue indexing tasks; it implements
// transcript.Dispatcher.
type Client struct {
	client *asynq.Client
}

// NewClient builds a task-enqueuing client against the same Redis instance
// the setting cache uses.
func NewClient(cfg *config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(redisClientOpt(cfg))}
}

// DispatchIndexMeeting enqueues a large-transcript indexing job on the
// default queue.
func (c *Client) DispatchIndexMeeting(ctx context.Context, meetingID string) error {
	payload, err := json.Marshal(indexMeetingPayload{MeetingID: meetingID})
	if err != nil {
		return fmt.Errorf("encode index_meeting payload: %w", err)
	}
	task := asynq.NewTask(TypeIndexMeeting, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue("default")); err != nil {
		return fmt.Errorf("enqueue index_meeting task: %w", err)
	}
	return nil
}

// Indexer is the narrow contract the task handler needs from the transcript
// ingestor: run the chunk+embed+insert path for one already-persisted
// meeting.
type Indexer interface {
	IndexMeeting(ctx context.Context, meetingID string) error
}

// Server runs the asynq worker loop and dispatches TypeIndexMeeting tasks to
// the given Indexer.
type Server struct {
	server  *asynq.Server
	indexer Indexer
}

// NewServer builds a worker bound to the given Indexer.
func NewServer(cfg *config.RedisConfig, concurrency int, indexer Indexer) *Server {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisClientOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	})
	return &Server{server: srv, indexer: indexer}
}

// Run starts the worker loop; it blocks until the server stops or fails.
func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeIndexMeeting, s.handleIndexMeeting)
	return s.server.Run(mux)
}

// Shutdown stops the worker loop, waiting for in-flight tasks to finish.
func (s *Server) Shutdown() {
	s.server.Shutdown()
}

func (s *Server) handleIndexMeeting(ctx context.Context, task *asynq.Task) error {
	var payload indexMeetingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode index_meeting payload: %w", err)
	}
	if err := s.indexer.IndexMeeting(ctx, payload.MeetingID); err != nil {
		logger.GetLogger(ctx).WithField("component", "jobs").
			Errorf("index meeting %s: %v", payload.MeetingID, err)
		return err
	}
	return nil
}
