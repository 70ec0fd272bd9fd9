package store

import (
	"context"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

// Hypothesis and Lead are outer-shell CRUD entities: they never participate
// in retrieval, chunking, or embedding, so their accessors live outside
// interfaces.Store and are consumed directly by the handler layer.

func (s *Store) CreateHypothesis(ctx context.Context, h *types.Hypothesis) error {
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *Store) ListHypothesesByClient(ctx context.Context, clientID string) ([]*types.Hypothesis, error) {
	var hs []*types.Hypothesis
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Find(&hs).Error
	return hs, err
}

func (s *Store) CreateLead(ctx context.Context, l *types.Lead) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *Store) ListLeads(ctx context.Context) ([]*types.Lead, error) {
	var leads []*types.Lead
	err := s.db.WithContext(ctx).Find(&leads).Error
	return leads, err
}
