package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

type stubMeetingSearcher struct {
	calls []types.DiversifiedSearchParams
	// results, indexed by call order; last entry repeats once exhausted
	results [][]types.MeetingHit
}

func (s *stubMeetingSearcher) SearchMeetingsDiversified(ctx context.Context, query []float32, p types.DiversifiedSearchParams) ([]types.MeetingHit, error) {
	s.calls = append(s.calls, p)
	idx := len(s.calls) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	return s.results[idx], nil
}

type stubChatSearcher struct {
	calls   []types.DiversifiedSearchParams
	results [][]types.ChatHit
}

func (s *stubChatSearcher) SearchChatsDiversified(ctx context.Context, query []float32, p types.DiversifiedSearchParams) ([]types.ChatHit, error) {
	s.calls = append(s.calls, p)
	idx := len(s.calls) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	return s.results[idx], nil
}

func threeHits() []types.MeetingHit {
	return []types.MeetingHit{{MeetingID: "1"}, {MeetingID: "2"}, {MeetingID: "3"}}
}

func TestSearchMeetingsCascaded_NoFiltersUsesUnfilteredParams(t *testing.T) {
	store := &stubMeetingSearcher{results: [][]types.MeetingHit{threeHits()}}
	hits, err := searchMeetingsCascaded(context.Background(), store, []float32{0.1}, nil, nil, nil, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	require.Len(t, store.calls, 1)
	assert.Equal(t, 1, store.calls[0].MaxPerGroup)
	assert.Equal(t, 15, store.calls[0].MaxTotal)
	assert.Equal(t, 0.20, store.calls[0].MinSimilarity)
}

func TestSearchMeetingsCascaded_TitleFilterEnoughResultsStopsAfterFirstCall(t *testing.T) {
	store := &stubMeetingSearcher{results: [][]types.MeetingHit{threeHits()}}
	title := types.TitleFilter("Acme")
	hits, err := searchMeetingsCascaded(context.Background(), store, []float32{0.1}, nil, &title, nil, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	require.Len(t, store.calls, 1)
	assert.Equal(t, 2, store.calls[0].MaxPerGroup)
	assert.Equal(t, 20, store.calls[0].MaxTotal)
}

func TestSearchMeetingsCascaded_TitleFilterFallsBackWhenTooFew(t *testing.T) {
	store := &stubMeetingSearcher{
		results: [][]types.MeetingHit{
			{{MeetingID: "1"}},       // first attempt: below floor of 3
			{{MeetingID: "1"}, {MeetingID: "2"}, {MeetingID: "3"}, {MeetingID: "4"}}, // after dropping title filter
		},
	}
	title := types.TitleFilter("Acme")
	hits, err := searchMeetingsCascaded(context.Background(), store, []float32{0.1}, nil, &title, nil, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
	require.Len(t, store.calls, 2)
	assert.Equal(t, 1, store.calls[1].MaxPerGroup)
	assert.Nil(t, store.calls[1].TitleFilter)
}

func TestSearchMeetingsCascaded_DateRangeDroppedBeforeTitleFilter(t *testing.T) {
	store := &stubMeetingSearcher{
		results: [][]types.MeetingHit{
			{{MeetingID: "1"}},                  // with date range: too few
			{{MeetingID: "1"}, {MeetingID: "2"}, {MeetingID: "3"}}, // date range dropped: enough
		},
	}
	title := types.TitleFilter("Acme")
	dr := &types.DateRange{Description: "Q4 2025"}
	hits, err := searchMeetingsCascaded(context.Background(), store, []float32{0.1}, nil, &title, dr, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	require.Len(t, store.calls, 2)
	assert.Nil(t, store.calls[1].DateRange)
	assert.NotNil(t, store.calls[1].TitleFilter)
}

func TestSearchMeetingsCascaded_MaxPerGroupOverrideAppliesToEveryAttempt(t *testing.T) {
	store := &stubMeetingSearcher{results: [][]types.MeetingHit{threeHits()}}
	hits, err := searchMeetingsCascaded(context.Background(), store, []float32{0.1}, nil, nil, nil, 5)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	require.Len(t, store.calls, 1)
	assert.Equal(t, 5, store.calls[0].MaxPerGroup)
}

func TestSearchChatsCascaded_NoFilters(t *testing.T) {
	store := &stubChatSearcher{results: [][]types.ChatHit{{{ChatExternalID: 1}}}}
	hits, err := searchChatsCascaded(context.Background(), store, []float32{0.1}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	require.Len(t, store.calls, 1)
	assert.Equal(t, 2, store.calls[0].MaxPerGroup)
	assert.Equal(t, 10, store.calls[0].MaxTotal)
}

func TestSearchChatsCascaded_DateRangeDroppedWhenTooFew(t *testing.T) {
	store := &stubChatSearcher{
		results: [][]types.ChatHit{
			{{ChatExternalID: 1}},
			{{ChatExternalID: 1}, {ChatExternalID: 2}},
		},
	}
	dr := &types.DateRange{Description: "Q4 2025"}
	hits, err := searchChatsCascaded(context.Background(), store, []float32{0.1}, nil, dr)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	require.Len(t, store.calls, 2)
	assert.Nil(t, store.calls[1].DateRange)
}
