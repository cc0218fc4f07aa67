// Package keyset implements cursor-based (keyset) pagination for the listing
// feeds: an opaque cursor codec and the boundary predicate that selects rows
// strictly after the cursor in sort order.
package keyset

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cursor is the sort-key tuple of the last row of a page. Time is the primary
// sort field (updated_at, reacted_at or viewed_at depending on the feed) and
// ID is the tie-breaker guaranteeing total order. Score and Epoch are only
// set for relevance-sorted search pages: Epoch pins the clock the score was
// computed against, so later pages recompute the boundary row's score to the
// exact value stored in the cursor instead of a slightly drifted one.
type Cursor struct {
	ID    uuid.UUID `json:"id"`
	Time  time.Time `json:"t"`
	Score *float64  `json:"s,omitempty"`
	Epoch *int64    `json:"e,omitempty"`
}

// Encode serializes the cursor into an opaque URL-safe token. Callers must
// pass the token back verbatim.
func Encode(c Cursor) string {
	data, err := json.Marshal(c)
	if err != nil {
		// Cursor only holds a UUID, a time and a float; marshaling cannot fail.
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a token produced by Encode. An empty token yields (nil, nil):
// the first page has no cursor.
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	if c.ID == uuid.Nil {
		return nil, fmt.Errorf("malformed cursor: missing id")
	}
	return &c, nil
}

// Predicate renders the boundary condition selecting rows strictly after the
// cursor when ordering by (timeCol DESC, idCol DESC):
//
//	timeCol < $n OR (timeCol = $n AND idCol < $n+1)
//
// The primary sort column is a timestamp and therefore not unique; comparing
// on it alone would drop or duplicate rows whenever several records share a
// value. argIndex is the first positional parameter number to use.
func (c *Cursor) Predicate(timeCol, idCol string, argIndex int) (string, []interface{}) {
	frag := fmt.Sprintf("(%s < $%d OR (%s = $%d AND %s < $%d))",
		timeCol, argIndex, timeCol, argIndex, idCol, argIndex+1)
	return frag, []interface{}{c.Time, c.ID}
}

// ScorePredicate renders the boundary condition for the three-part search
// ordering (scoreExpr DESC, timeCol DESC, idCol DESC):
//
//	score < $n
//	OR (score = $n AND time < $n+1)
//	OR (score = $n AND time = $n+1 AND id < $n+2)
//
// scoreExpr is the relevance expression, repeated per branch; it may
// reference positional parameters the caller has already bound, while
// argIndex..argIndex+2 are the three the predicate itself consumes. Falls
// back to the plain time predicate when the cursor has no score.
func (c *Cursor) ScorePredicate(scoreExpr, timeCol, idCol string, argIndex int) (string, []interface{}) {
	if c.Score == nil {
		return c.Predicate(timeCol, idCol, argIndex)
	}
	frag := fmt.Sprintf(
		"(%s < $%d OR (%s = $%d AND %s < $%d) OR (%s = $%d AND %s = $%d AND %s < $%d))",
		scoreExpr, argIndex,
		scoreExpr, argIndex, timeCol, argIndex+1,
		scoreExpr, argIndex, timeCol, argIndex+1, idCol, argIndex+2,
	)
	return frag, []interface{}{*c.Score, c.Time, c.ID}
}

// ===============================
// PREDICATE BUILDER
// ===============================

// Where accumulates optional predicate fragments ANDed together, tracking
// positional parameter numbering. It replaces per-feed branching on every
// filter combination with a flat list of conditions.
type Where struct {
	frags []string
	args  []interface{}
	next  int
}

// NewWhere returns a builder whose first positional parameter is $start.
func NewWhere(start int) *Where {
	return &Where{next: start}
}

// Append adds a pre-rendered fragment whose parameters were numbered with
// NextArg.
func (w *Where) Append(frag string, args ...interface{}) *Where {
	if frag == "" {
		return w
	}
	w.frags = append(w.frags, frag)
	w.args = append(w.args, args...)
	return w
}

// Eq adds `col = $n`.
func (w *Where) Eq(col string, value interface{}) *Where {
	return w.Append(fmt.Sprintf("%s = $%d", col, w.TakeArgs(1)), value)
}

// NotEq adds `col <> $n`.
func (w *Where) NotEq(col string, value interface{}) *Where {
	return w.Append(fmt.Sprintf("%s <> $%d", col, w.TakeArgs(1)), value)
}

// Bind records arguments for a fragment rendered outside the WHERE clause,
// such as a SELECT or ORDER BY expression whose parameters were numbered with
// TakeArgs.
func (w *Where) Bind(args ...interface{}) *Where {
	w.args = append(w.args, args...)
	return w
}

// NextArg reports the next unused positional parameter number without
// consuming it.
func (w *Where) NextArg() int { return w.next }

// TakeArgs reserves n positional parameter numbers and returns the first.
func (w *Where) TakeArgs(n int) int {
	first := w.next
	w.next += n
	return first
}

// Args returns the accumulated query arguments in parameter order.
func (w *Where) Args() []interface{} { return w.args }

// Clause renders "WHERE ..." or an empty string when no fragment was added.
func (w *Where) Clause() string {
	if len(w.frags) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.frags, " AND ")
}
