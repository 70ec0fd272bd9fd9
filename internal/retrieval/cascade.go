package retrieval

import (
	"context"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

// meetingSearcher is the subset of the Store's meeting search the cascade
// needs; narrowed so the cascade logic is testable against a stub.
type meetingSearcher interface {
	SearchMeetingsDiversified(ctx context.Context, query []float32, p types.DiversifiedSearchParams) ([]types.MeetingHit, error)
}

type chatSearcher interface {
	SearchChatsDiversified(ctx context.Context, query []float32, p types.DiversifiedSearchParams) ([]types.ChatHit, error)
}

// searchMeetingsCascaded implements the meeting-side cascade table: starts
// from filtered parameters when any filter was inferred, relaxes the
// date-range first and then the title filter when results stay under the
// 3-hit floor, and falls back to the unfiltered parameters when no filter
// was inferred at all. maxPerGroupOverride, when > 0, replaces both the
// filtered and unfiltered MaxPerGroup defaults (the settings.max_per_group_meeting
// tunable).
func searchMeetingsCascaded(
	ctx context.Context, store meetingSearcher, query []float32,
	clientID *string, titleFilter *types.TitleFilter, dateRange *types.DateRange,
	maxPerGroupOverride int,
) ([]types.MeetingHit, error) {
	maxPerGroup := func(def int) int {
		if maxPerGroupOverride > 0 {
			return maxPerGroupOverride
		}
		return def
	}

	if titleFilter == nil && clientID == nil && dateRange == nil {
		return store.SearchMeetingsDiversified(ctx, query, types.DiversifiedSearchParams{
			MaxPerGroup: maxPerGroup(1), MaxTotal: 15, MinSimilarity: 0.20,
			ClientID: clientID,
		})
	}

	hits, err := store.SearchMeetingsDiversified(ctx, query, types.DiversifiedSearchParams{
		MaxPerGroup: maxPerGroup(2), MaxTotal: 20, MinSimilarity: 0.15,
		ClientID: clientID, TitleFilter: titleFilter, DateRange: dateRange,
	})
	if err != nil {
		return nil, err
	}

	if len(hits) < 3 && dateRange != nil {
		hits, err = store.SearchMeetingsDiversified(ctx, query, types.DiversifiedSearchParams{
			MaxPerGroup: maxPerGroup(2), MaxTotal: 20, MinSimilarity: 0.15,
			ClientID: clientID, TitleFilter: titleFilter,
		})
		if err != nil {
			return nil, err
		}
	}

	if len(hits) < 3 && titleFilter != nil {
		hits, err = store.SearchMeetingsDiversified(ctx, query, types.DiversifiedSearchParams{
			MaxPerGroup: maxPerGroup(1), MaxTotal: 15, MinSimilarity: 0.20,
			ClientID: clientID,
		})
		if err != nil {
			return nil, err
		}
	}

	return hits, nil
}

// searchChatsCascaded implements the chat-side cascade table: filtered
// parameters when a client-name or date-range filter was inferred, one
// relaxation step dropping the date range, and unfiltered parameters
// otherwise.
func searchChatsCascaded(
	ctx context.Context, store chatSearcher, query []float32,
	clientName *types.ClientNameFilter, dateRange *types.DateRange,
) ([]types.ChatHit, error) {
	if clientName == nil && dateRange == nil {
		return store.SearchChatsDiversified(ctx, query, types.DiversifiedSearchParams{
			MaxPerGroup: 2, MaxTotal: 10, MinSimilarity: 0.20,
		})
	}

	hits, err := store.SearchChatsDiversified(ctx, query, types.DiversifiedSearchParams{
		MaxPerGroup: 3, MaxTotal: 15, MinSimilarity: 0.15,
		ChatClientName: clientName, DateRange: dateRange,
	})
	if err != nil {
		return nil, err
	}

	if len(hits) < 2 && dateRange != nil {
		hits, err = store.SearchChatsDiversified(ctx, query, types.DiversifiedSearchParams{
			MaxPerGroup: 3, MaxTotal: 15, MinSimilarity: 0.15,
			ChatClientName: clientName,
		})
		if err != nil {
			return nil, err
		}
	}

	return hits, nil
}
