package keyset

// SplitPage trims a limit+1 over-fetch down to the page contents. Feeds fetch
// one extra row so that "more pages exist" is known without a second count
// query; hasMore is true iff that extra row came back.
func SplitPage[T any](rows []T, limit int) (items []T, hasMore bool) {
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}
