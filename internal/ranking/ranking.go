// Package ranking computes the relevance scores used by the search and
// suggestion feeds. Each score exists twice: as a pure Go function used by
// unit tests and cursor bookkeeping, and as a SQL expression builder the
// repositories embed so ordering happens in the database.
package ranking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quetrea/youtube-clone/internal/keyset"
)

// Title match tiers for search scoring. An eligible row that matches only in
// the description falls through to TierDescription.
const (
	TierExact       = 10
	TierPrefix      = 8
	TierSubstring   = 6
	TierAllWords    = 4
	TierAnyWord     = 2
	TierDescription = 1
)

// QueryWords lowercases and splits a query on whitespace, dropping empty
// tokens.
func QueryWords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// TitleTier classifies how well a title matches a query. Tiers are checked
// from strongest to weakest so a title always lands on the highest one it
// satisfies.
func TitleTier(title, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(title)
	words := QueryWords(query)

	switch {
	case t == q:
		return TierExact
	case strings.HasPrefix(t, q):
		return TierPrefix
	case strings.Contains(t, q):
		return TierSubstring
	case containsAll(t, words):
		return TierAllWords
	case containsAny(t, words):
		return TierAnyWord
	default:
		return TierDescription
	}
}

func containsAll(s string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// RecencyFactor scales a tier by how recently the video was updated, as a
// fraction of the current epoch. The factor lands in (1.0, 1.5] for any
// update time between the epoch and now, so it reorders within a tier but
// never promotes across tiers.
func RecencyFactor(updatedAt, now time.Time) float64 {
	nowSec := float64(now.Unix())
	if nowSec <= 0 {
		return 1.0
	}
	return 1.0 + float64(updatedAt.Unix())/nowSec*0.5
}

// SearchScore is the full relevance score of a title for a query: the match
// tier scaled by recency.
func SearchScore(title, query string, updatedAt, now time.Time) float64 {
	return float64(TitleTier(title, query)) * RecencyFactor(updatedAt, now)
}

// Matches reports search eligibility: at least one query word appears in the
// title, or the full query appears in the description.
func Matches(title, description, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if containsAny(strings.ToLower(title), QueryWords(query)) {
		return true
	}
	return strings.Contains(strings.ToLower(description), q)
}

// SuggestionSignals are the per-candidate inputs to the suggestion score.
type SuggestionSignals struct {
	SameCategory bool
	ViewCount    int64
	LikeCount    int64
	DislikeCount int64
	Subscribed   bool
}

// SuggestionScore combines category affinity, engagement counts and the
// viewer's subscription to the candidate's creator into a single ranking
// value.
func SuggestionScore(s SuggestionSignals) float64 {
	score := 0.0
	if s.SameCategory {
		score += 50
	}
	score += float64(s.ViewCount) * 0.1
	score += float64(s.LikeCount) * 0.5
	score -= float64(s.DislikeCount) * 0.2
	if s.Subscribed {
		score += 30
	}
	return score
}

// SearchMatchSQL renders the eligibility predicate for a non-blank query,
// allocating its parameters from w:
//
//	(title ILIKE %word% OR ... OR description ILIKE %query%)
func SearchMatchSQL(w *keyset.Where, titleCol, descCol, query string) string {
	q := strings.TrimSpace(query)
	words := QueryWords(query)

	frags := make([]string, 0, len(words)+1)
	first := w.TakeArgs(len(words) + 1)
	for i, word := range words {
		w.Bind("%" + word + "%")
		frags = append(frags, fmt.Sprintf("%s ILIKE $%d", titleCol, first+i))
	}
	w.Bind("%" + q + "%")
	frags = append(frags, fmt.Sprintf("%s ILIKE $%d", descCol, first+len(words)))
	return "(" + strings.Join(frags, " OR ") + ")"
}

// SearchScoreSQL renders the relevance expression for a non-blank query,
// allocating its parameters from w. It mirrors TitleTier and RecencyFactor
// exactly; the repositories embed it in both the SELECT list and the ORDER BY
// so Postgres computes the score once per row.
//
// epoch is the recency clock in unix seconds, bound as a parameter rather
// than read from CURRENT_TIMESTAMP. All pages of one scroll share the epoch
// captured on the first page, so re-evaluating the expression against a
// cursor's boundary score yields exactly the score that was encoded; a live
// clock would shrink every score between pages and leak the boundary row
// into the next page.
func SearchScoreSQL(w *keyset.Where, titleCol, updatedAtCol, query string, epoch int64) string {
	q := strings.ToLower(strings.TrimSpace(query))
	words := QueryWords(query)

	phrase := w.TakeArgs(3)
	w.Bind(q, q+"%", "%"+q+"%")

	wordFrags := make([]string, len(words))
	firstWord := w.TakeArgs(len(words))
	for i, word := range words {
		w.Bind("%" + word + "%")
		wordFrags[i] = fmt.Sprintf("LOWER(%s) LIKE $%d", titleCol, firstWord+i)
	}

	epochArg := w.TakeArgs(1)
	w.Bind(float64(epoch))

	var b strings.Builder
	b.WriteString("(CASE")
	fmt.Fprintf(&b, " WHEN LOWER(%s) = $%d THEN %d", titleCol, phrase, TierExact)
	fmt.Fprintf(&b, " WHEN LOWER(%s) LIKE $%d THEN %d", titleCol, phrase+1, TierPrefix)
	fmt.Fprintf(&b, " WHEN LOWER(%s) LIKE $%d THEN %d", titleCol, phrase+2, TierSubstring)
	fmt.Fprintf(&b, " WHEN %s THEN %d", strings.Join(wordFrags, " AND "), TierAllWords)
	fmt.Fprintf(&b, " WHEN %s THEN %d", strings.Join(wordFrags, " OR "), TierAnyWord)
	fmt.Fprintf(&b, " ELSE %d END", TierDescription)
	fmt.Fprintf(&b, "::float * (1.0 + EXTRACT(EPOCH FROM %s) / $%d * 0.5))", updatedAtCol, epochArg)
	return b.String()
}

// SuggestionScoreSQL renders the suggestion relevance expression for
// candidates aliased by tbl, allocating parameters from w. categoryID is the
// source video's category (nil skips the category boost); viewerID enables
// the subscribed-creator boost when an authenticated viewer is known.
func SuggestionScoreSQL(w *keyset.Where, tbl string, categoryID *uuid.UUID, viewerID *uuid.UUID) string {
	var b strings.Builder
	b.WriteString("(")
	if categoryID != nil {
		fmt.Fprintf(&b, "CASE WHEN %s.category_id = $%d THEN 50 ELSE 0 END", tbl, w.TakeArgs(1))
		w.Bind(*categoryID)
	} else {
		b.WriteString("0")
	}
	fmt.Fprintf(&b, " + (SELECT COUNT(*) FROM video_views vv WHERE vv.video_id = %s.id) * 0.1", tbl)
	fmt.Fprintf(&b, " + (SELECT COUNT(*) FROM video_reactions vr WHERE vr.video_id = %s.id AND vr.reaction_type = 'like') * 0.5", tbl)
	fmt.Fprintf(&b, " - (SELECT COUNT(*) FROM video_reactions vr WHERE vr.video_id = %s.id AND vr.reaction_type = 'dislike') * 0.2", tbl)
	if viewerID != nil {
		fmt.Fprintf(&b, " + CASE WHEN EXISTS (SELECT 1 FROM subscriptions sub WHERE sub.viewer_id = $%d AND sub.creator_id = %s.user_id) THEN 30 ELSE 0 END", w.TakeArgs(1), tbl)
		w.Bind(*viewerID)
	}
	b.WriteString(")")
	return b.String()
}
