package dbg

// Matches reports whether candidate matches pattern as a whole. '*' in the
// pattern matches any run of characters (including none); every other byte must
// match exactly, case-sensitively. There is no escaping.
//
// Greedy scan with backtracking to the most recent '*': linear for the usual
// "prefix:*" patterns, quadratic in the worst case (many stars over a long
// name), which is fine for namespace-sized strings.
func Matches(candidate, pattern string) bool {
	ci, pi := 0, 0
	star, mark := -1, 0
	for ci < len(candidate) {
		switch {
		case pi < len(pattern) && pattern[pi] == WILDCARD:
			star, mark = pi, ci
			pi++
		case pi < len(pattern) && pattern[pi] == candidate[ci]:
			ci++
			pi++
		case star >= 0:
			// let the last star swallow one more character and retry
			pi = star + 1
			mark++
			ci = mark
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == WILDCARD {
		pi++
	}
	return pi == len(pattern)
}
