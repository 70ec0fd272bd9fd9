package retrieval

import (
	"fmt"
	"strings"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

const apologyAnswer = "К сожалению, я не нашёл релевантной информации по вашему вопросу."

// formatMeetingContext groups hits by meeting id, preserving first-seen
// (globally-ranked) order, and renders one bracketed section per meeting.
func formatMeetingContext(hits []types.MeetingHit) string {
	order := []string{}
	groups := map[string][]types.MeetingHit{}
	for _, h := range hits {
		if _, ok := groups[h.MeetingID]; !ok {
			order = append(order, h.MeetingID)
		}
		groups[h.MeetingID] = append(groups[h.MeetingID], h)
	}

	var parts []string
	for i, meetingID := range order {
		chunks := groups[meetingID]
		dateStr := ""
		if chunks[0].HeldAt != nil {
			dateStr = " (" + chunks[0].HeldAt.Format("2006-01-02") + ")"
		}
		header := fmt.Sprintf("[Встреча %d: %s%s]", i+1, chunks[0].Title, dateStr)
		texts := make([]string, len(chunks))
		for j, c := range chunks {
			texts[j] = c.ChunkText
		}
		parts = append(parts, header+"\n"+strings.Join(texts, "\n\n"))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// formatChatContext groups hits by chat title and renders one bracketed
// section per chat, each line carrying the message date and sender.
func formatChatContext(hits []types.ChatHit) string {
	order := []string{}
	groups := map[string][]types.ChatHit{}
	for _, h := range hits {
		if _, ok := groups[h.ChatTitle]; !ok {
			order = append(order, h.ChatTitle)
		}
		groups[h.ChatTitle] = append(groups[h.ChatTitle], h)
	}

	var parts []string
	for i, title := range order {
		chunks := groups[title]
		client := "Неизвестный клиент"
		if chunks[0].ClientName != nil && *chunks[0].ClientName != "" {
			client = *chunks[0].ClientName
		}
		header := fmt.Sprintf("[Telegram чат %d: %s (клиент: %s)]", i+1, title, client)

		lines := make([]string, len(chunks))
		for j, c := range chunks {
			sender := "Неизвестный"
			if c.SenderName != nil && *c.SenderName != "" {
				sender = *c.SenderName
			}
			lines[j] = fmt.Sprintf("[%s, %s]: %s", c.Timestamp.Format("2006-01-02"), sender, c.ChunkText)
		}
		parts = append(parts, header+"\n"+strings.Join(lines, "\n\n"))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// formatCombinedContext joins a meeting section and a chat section under
// banners, omitting either side when empty.
func formatCombinedContext(meetingHits []types.MeetingHit, chatHits []types.ChatHit) string {
	var parts []string
	if len(meetingHits) > 0 {
		parts = append(parts, "=== ТРАНСКРИПТЫ ВСТРЕЧ ===\n\n"+formatMeetingContext(meetingHits))
	}
	if len(chatHits) > 0 {
		parts = append(parts, "=== ПЕРЕПИСКА В TELEGRAM ===\n\n"+formatChatContext(chatHits))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\n" + strings.Repeat("=", 50) + "\n\n" + strings.Join(parts, "\n\n"+strings.Repeat("=", 50)+"\n\n")
}

func meetingSources(hits []types.MeetingHit) []types.MeetingSource {
	out := make([]types.MeetingSource, len(hits))
	for i, h := range hits {
		var dateStr *string
		if h.HeldAt != nil {
			s := h.HeldAt.Format("2006-01-02")
			dateStr = &s
		}
		out[i] = types.MeetingSource{MeetingTitle: h.Title, MeetingDate: dateStr, Similarity: h.Similarity}
	}
	return out
}

func chatSources(hits []types.ChatHit) []types.ChatSource {
	out := make([]types.ChatSource, len(hits))
	for i, h := range hits {
		out[i] = types.ChatSource{ChatTitle: h.ChatTitle, ClientName: h.ClientName, Similarity: h.Similarity}
	}
	return out
}
