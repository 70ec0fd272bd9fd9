// Package retrieval implements the question-answering engine: filter
// inference, diversified nearest-neighbor search with cascading fallback,
// context assembly, and answer generation.
package retrieval

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dkoraitest/consultant-copilot/internal/types"
)

// inferCandidateFilter implements the shared client-name matching algorithm:
// among candidates, pick the one whose lowercased form has the longest match
// inside the lowercased question, first trying a whole-candidate substring
// match and falling back to any individual word longer than 3 characters.
func inferCandidateFilter(candidates []string, question string) (string, bool) {
	questionLower := strings.ToLower(question)

	var best, bestWord string
	bestLen, bestWordLen := 0, 0
	for _, candidate := range candidates {
		nameLower := strings.ToLower(candidate)
		if strings.Contains(questionLower, nameLower) {
			if n := utf8.RuneCountInString(nameLower); n > bestLen {
				best = candidate
				bestLen = n
			}
			continue
		}
		for _, word := range strings.Fields(nameLower) {
			n := utf8.RuneCountInString(word)
			if n > 3 && strings.Contains(questionLower, word) && n > bestWordLen {
				bestWord = candidate
				bestWordLen = n
			}
		}
	}
	if best == "" {
		best = bestWord
	}
	return best, best != ""
}

// titleToClientCandidate extracts the candidate canonical client name from a
// meeting title: the token before the first " - " separator, if longer than
// two characters.
func titleToClientCandidate(title string) (string, bool) {
	parts := strings.SplitN(title, " - ", 2)
	candidate := strings.TrimSpace(parts[0])
	if utf8.RuneCountInString(candidate) > 2 {
		return candidate, true
	}
	return "", false
}

// InferTitleFilter runs the client-filter algorithm against distinct meeting
// titles, producing a substring filter over LOWER(meeting.title).
func InferTitleFilter(titles []string, question string) *types.TitleFilter {
	seen := map[string]bool{}
	var candidates []string
	for _, t := range titles {
		if c, ok := titleToClientCandidate(t); ok && !seen[c] {
			seen[c] = true
			candidates = append(candidates, c)
		}
	}
	match, ok := inferCandidateFilter(candidates, question)
	if !ok {
		return nil
	}
	f := types.TitleFilter(match)
	return &f
}

// InferClientNameFilter runs the same matching algorithm against distinct
// ChatRoom.client_name values, producing an equality filter.
func InferClientNameFilter(clientNames []string, question string) *types.ClientNameFilter {
	match, ok := inferCandidateFilter(clientNames, question)
	if !ok {
		return nil
	}
	f := types.ClientNameFilter(match)
	return &f
}

var (
	reQuarterQYYYY     = regexp.MustCompile(`q([1-4])\s*(\d{4})`)
	reYYYYQQuarter     = regexp.MustCompile(`(\d{4})\s*q([1-4])`)
	reQuarterWordYear  = regexp.MustCompile(`([1-4])\s*(?:й|ый|ой|ий)?\s*квартал\s*(\d{4})`)
	reQuarterWordOnly  = regexp.MustCompile(`([1-4])\s*(?:й|ый|ой|ий)?\s*квартал`)
	rePrevQuarter      = regexp.MustCompile(`прошл\pL*\s+квартал|предыдущ\pL*\s+квартал`)
	reExplicitYear     = regexp.MustCompile(`(?:за|в|на)\s*(\d{4})\s*(?:год|г\.?)?`)
	rePrevYear         = regexp.MustCompile(`прошл\pL*\s+год|предыдущ\pL*\s+год`)
	rePrevMonth        = regexp.MustCompile(`прошл\pL*\s+месяц|предыдущ\pL*\s+месяц`)
	reLastN            = regexp.MustCompile(`последни[ех]\s+(\d+)\s*(месяц|недел|дн)`)
	reAnyYear          = regexp.MustCompile(`(\d{4})`)
	quarterWordNumbers = map[string]int{
		"первый": 1, "первого": 1, "первом": 1,
		"второй": 2, "второго": 2, "втором": 2,
		"третий": 3, "третьего": 3, "третьем": 3,
		"четвертый": 4, "четвертого": 4, "четвертом": 4,
	}
	monthPrefixes = []struct {
		prefix string
		month  time.Month
	}{
		{"январ", time.January}, {"феврал", time.February}, {"март", time.March},
		{"апрел", time.April}, {"ма", time.May}, {"июн", time.June},
		{"июл", time.July}, {"август", time.August}, {"сентябр", time.September},
		{"октябр", time.October}, {"ноябр", time.November}, {"декабр", time.December},
	}
)

// ParseDateRange extracts a DateRange from a question, trying quarter,
// explicit-year, relative-year, month, and relative-day/week/month patterns
// in that order. now anchors "previous"/"last N" phrasing.
func ParseDateRange(question string, now time.Time) *types.DateRange {
	q := strings.ToLower(question)
	currentYear := now.Year()

	for word, num := range quarterWordNumbers {
		if strings.Contains(q, word) && strings.Contains(q, "квартал") {
			year := currentYear
			if m := reAnyYear.FindStringSubmatch(q); m != nil {
				year, _ = strconv.Atoi(m[1])
			}
			return quarterToRange(num, year)
		}
	}

	if m := reQuarterQYYYY.FindStringSubmatch(q); m != nil {
		num, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return quarterToRange(num, year)
	}
	if m := reYYYYQQuarter.FindStringSubmatch(q); m != nil {
		year, _ := strconv.Atoi(m[1])
		num, _ := strconv.Atoi(m[2])
		return quarterToRange(num, year)
	}
	if m := reQuarterWordYear.FindStringSubmatch(q); m != nil {
		num, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return quarterToRange(num, year)
	}
	if m := reQuarterWordOnly.FindStringSubmatch(q); m != nil {
		num, _ := strconv.Atoi(m[1])
		return quarterToRange(num, currentYear)
	}

	if rePrevQuarter.MatchString(q) {
		currentQuarter := (int(now.Month())-1)/3 + 1
		if currentQuarter == 1 {
			return quarterToRange(4, currentYear-1)
		}
		return quarterToRange(currentQuarter-1, currentYear)
	}

	if m := reExplicitYear.FindStringSubmatch(q); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &types.DateRange{
			Start:       time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			End:         time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC),
			Description: strconv.Itoa(year) + " год",
		}
	}

	if rePrevYear.MatchString(q) {
		year := currentYear - 1
		return &types.DateRange{
			Start:       time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			End:         time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC),
			Description: strconv.Itoa(year) + " год",
		}
	}

	for _, mp := range monthPrefixes {
		if strings.Contains(q, mp.prefix) {
			year := currentYear
			if m := reAnyYear.FindStringSubmatch(q); m != nil {
				year, _ = strconv.Atoi(m[1])
			}
			start := time.Date(year, mp.month, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0).Add(-time.Second)
			return &types.DateRange{Start: start, End: end, Description: mp.prefix + "* " + strconv.Itoa(year)}
		}
	}

	if rePrevMonth.MatchString(q) {
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		lastOfPrevMonth := firstOfThisMonth.Add(-time.Second)
		firstOfPrevMonth := time.Date(lastOfPrevMonth.Year(), lastOfPrevMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
		return &types.DateRange{
			Start:       firstOfPrevMonth,
			End:         lastOfPrevMonth,
			Description: "прошлый месяц",
		}
	}

	if m := reLastN.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[1])
		unit := m[2]
		var start time.Time
		switch {
		case strings.HasPrefix(unit, "месяц"):
			start = now.AddDate(0, 0, -n*30)
		case strings.HasPrefix(unit, "недел"):
			start = now.AddDate(0, 0, -n*7)
		default:
			start = now.AddDate(0, 0, -n)
		}
		return &types.DateRange{
			Start:       start,
			End:         now,
			Description: "последние " + strconv.Itoa(n) + " " + unit + "*",
		}
	}

	return nil
}

func quarterToRange(quarter, year int) *types.DateRange {
	quarterStarts := map[int]time.Month{1: time.January, 2: time.April, 3: time.July, 4: time.October}
	startMonth := quarterStarts[quarter]
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).Add(-time.Second)
	return &types.DateRange{
		Start:       start,
		End:         end,
		Description: "Q" + strconv.Itoa(quarter) + " " + strconv.Itoa(year),
	}
}
