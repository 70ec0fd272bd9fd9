package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferTitleFilter_LongestMatchWins(t *testing.T) {
	titles := []string{"Acme Corp - Weekly Sync", "Beta LLC - Kickoff", "Acme - Retro"}
	f := InferTitleFilter(titles, "Что обсуждали с Acme Corp на прошлой неделе?")
	require.NotNil(t, f)
	assert.Equal(t, "Acme Corp", string(*f))
}

func TestInferTitleFilter_NoMatch(t *testing.T) {
	titles := []string{"Acme Corp - Weekly Sync"}
	f := InferTitleFilter(titles, "Что вообще происходит?")
	assert.Nil(t, f)
}

func TestInferTitleFilter_ShortCandidateIgnored(t *testing.T) {
	titles := []string{"A - Sync"}
	f := InferTitleFilter(titles, "Расскажи про A")
	assert.Nil(t, f)
}

func TestInferClientNameFilter_WordFallback(t *testing.T) {
	names := []string{"Northwind Trading"}
	f := InferClientNameFilter(names, "что писали про Northwind в чате?")
	require.NotNil(t, f)
	assert.Equal(t, "Northwind Trading", string(*f))
}

func TestParseDateRange_QuarterNotation(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	dr := ParseDateRange("что обсудили в Q4 2025?", now)
	require.NotNil(t, dr)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), dr.Start)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), dr.End)
	assert.Equal(t, "Q4 2025", dr.Description)
}

func TestParseDateRange_ExplicitYear(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	dr := ParseDateRange("что было за 2024 год?", now)
	require.NotNil(t, dr)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dr.Start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), dr.End)
}

func TestParseDateRange_NoMatch(t *testing.T) {
	dr := ParseDateRange("расскажи основное", time.Now())
	assert.Nil(t, dr)
}
