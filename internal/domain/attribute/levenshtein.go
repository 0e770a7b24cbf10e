package attribute

// Distance returns the Levenshtein edit distance between two strings, with
// insertion, deletion and substitution each costing 1. Computed over runes
// with a single rolling row.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i, ca := range ra {
		prev := row[0] // row[j-1] of the previous row
		row[0] = i + 1
		for j, cb := range rb {
			cost := 0
			if ca != cb {
				cost = 1
			}
			next := min3(row[j+1]+1, row[j]+1, prev+cost)
			prev = row[j+1]
			row[j+1] = next
		}
	}
	return row[len(rb)]
}

// Similarity returns a normalized string similarity in [0,1]:
// 1 - distance/max(len). Identical strings score exactly 1.0; comparing
// against an empty string scores 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0.0
	}
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1.0 - float64(Distance(a, b))/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
