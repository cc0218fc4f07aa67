package keyset

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	score := 6.42
	epoch := int64(1700000000)
	cases := []struct {
		name   string
		cursor Cursor
	}{
		{
			name: "time and id",
			cursor: Cursor{
				ID:   uuid.New(),
				Time: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
			},
		},
		{
			name: "with score",
			cursor: Cursor{
				ID:    uuid.New(),
				Time:  time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC),
				Score: &score,
			},
		},
		{
			name: "with score and pinned clock",
			cursor: Cursor{
				ID:    uuid.New(),
				Time:  time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC),
				Score: &score,
				Epoch: &epoch,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := Encode(tc.cursor)
			require.NotEmpty(t, token)

			got, err := Decode(token)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tc.cursor.ID, got.ID)
			assert.True(t, tc.cursor.Time.Equal(got.Time))
			if tc.cursor.Score == nil {
				assert.Nil(t, got.Score)
			} else {
				require.NotNil(t, got.Score)
				assert.Equal(t, *tc.cursor.Score, *got.Score)
			}
			if tc.cursor.Epoch == nil {
				assert.Nil(t, got.Epoch)
			} else {
				require.NotNil(t, got.Epoch)
				assert.Equal(t, *tc.cursor.Epoch, *got.Epoch)
			}
		})
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	c, err := Decode("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 but not json", "bm90LWpzb24"},
		{"valid json missing id", "e30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Decode(tc.token)
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestTokenIsURLSafe(t *testing.T) {
	token := Encode(Cursor{ID: uuid.New(), Time: time.Now()})
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestPredicate(t *testing.T) {
	c := &Cursor{ID: uuid.New(), Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

	frag, args := c.Predicate("v.updated_at", "v.id", 3)

	assert.Equal(t, "(v.updated_at < $3 OR (v.updated_at = $3 AND v.id < $4))", frag)
	require.Len(t, args, 2)
	assert.Equal(t, c.Time, args[0])
	assert.Equal(t, c.ID, args[1])
}

func TestScorePredicate(t *testing.T) {
	score := 12.5
	c := &Cursor{ID: uuid.New(), Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), Score: &score}

	frag, args := c.ScorePredicate("score_expr", "v.updated_at", "v.id", 5)

	assert.Equal(t,
		"(score_expr < $5 OR (score_expr = $5 AND v.updated_at < $6) OR (score_expr = $5 AND v.updated_at = $6 AND v.id < $7))",
		frag)
	require.Len(t, args, 3)
	assert.Equal(t, score, args[0])
	assert.Equal(t, c.Time, args[1])
	assert.Equal(t, c.ID, args[2])
}

func TestScorePredicateWithoutScoreFallsBack(t *testing.T) {
	c := &Cursor{ID: uuid.New(), Time: time.Now()}

	frag, args := c.ScorePredicate("score_expr", "v.updated_at", "v.id", 1)

	assert.Equal(t, "(v.updated_at < $1 OR (v.updated_at = $1 AND v.id < $2))", frag)
	assert.Len(t, args, 2)
}

func TestWhereBuilder(t *testing.T) {
	w := NewWhere(1)
	assert.Equal(t, "", w.Clause())

	w.Eq("v.visibility", "public")
	w.NotEq("v.id", "x")
	first := w.TakeArgs(2)
	w.Append("(v.updated_at < $3 OR v.id < $4)", time.Unix(0, 0), "y")

	assert.Equal(t, 3, first)
	assert.Equal(t, 5, w.NextArg())
	assert.Equal(t,
		"WHERE v.visibility = $1 AND v.id <> $2 AND (v.updated_at < $3 OR v.id < $4)",
		w.Clause())
	assert.Len(t, w.Args(), 4)
}

func TestWhereBind(t *testing.T) {
	w := NewWhere(1)
	n := w.TakeArgs(1)
	w.Bind("select-list-arg")
	w.Eq("v.visibility", "public")

	assert.Equal(t, 1, n)
	assert.Equal(t, "WHERE v.visibility = $2", w.Clause())
	assert.Equal(t, []interface{}{"select-list-arg", "public"}, w.Args())
}

func TestSplitPage(t *testing.T) {
	cases := []struct {
		name      string
		rows      []int
		limit     int
		wantItems []int
		wantMore  bool
	}{
		{"under limit", []int{1, 2}, 5, []int{1, 2}, false},
		{"exactly limit", []int{1, 2, 3}, 3, []int{1, 2, 3}, false},
		{"overfetched", []int{1, 2, 3, 4}, 3, []int{1, 2, 3}, true},
		{"empty", nil, 3, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, more := SplitPage(tc.rows, tc.limit)
			assert.Equal(t, tc.wantItems, items)
			assert.Equal(t, tc.wantMore, more)
		})
	}
}
