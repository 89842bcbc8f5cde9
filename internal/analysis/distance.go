package analysis

// Distance returns the Levenshtein edit distance between a and b, over runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// WithinDistance reports Distance(a, b) <= maxDist, skipping the DP when the
// rune lengths alone already differ by more than maxDist.
func WithinDistance(a, b string, maxDist int) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > maxDist {
		return false
	}
	return Distance(a, b) <= maxDist
}
