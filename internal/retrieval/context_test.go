package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

func TestFormatMeetingContext_GroupsByMeetingPreservingOrder(t *testing.T) {
	held := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	hits := []types.MeetingHit{
		{MeetingID: "a", Title: "Acme - Sync", HeldAt: &held, ChunkText: "first"},
		{MeetingID: "b", Title: "Beta - Kickoff", ChunkText: "second"},
		{MeetingID: "a", Title: "Acme - Sync", HeldAt: &held, ChunkText: "third"},
	}
	out := formatMeetingContext(hits)
	assert.Contains(t, out, "[Встреча 1: Acme - Sync (2025-11-03)]")
	assert.Contains(t, out, "[Встреча 2: Beta - Kickoff]")
	assert.True(t, indexOf(out, "first") < indexOf(out, "second"))
	assert.True(t, indexOf(out, "second") < indexOf(out, "third"))
}

func TestFormatChatContext_UnknownSenderAndClientFallback(t *testing.T) {
	hits := []types.ChatHit{
		{ChatTitle: "Deals", Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), ChunkText: "hi"},
	}
	out := formatChatContext(hits)
	assert.Contains(t, out, "клиент: Неизвестный клиент")
	assert.Contains(t, out, "Неизвестный")
}

func TestFormatCombinedContext_OmitsEmptySections(t *testing.T) {
	out := formatCombinedContext(nil, []types.ChatHit{{ChatTitle: "x", ChunkText: "y"}})
	assert.NotContains(t, out, "ТРАНСКРИПТЫ ВСТРЕЧ")
	assert.Contains(t, out, "ПЕРЕПИСКА В TELEGRAM")
}

func TestFormatCombinedContext_EmptyBothReturnsEmptyString(t *testing.T) {
	assert.Equal(t, "", formatCombinedContext(nil, nil))
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
