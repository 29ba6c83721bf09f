// Package similarity decides whether two claims say the same thing and removes near-duplicates.
package similarity

import "strings"

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0,1]: 2*M/T where M is
// the number of characters in matching blocks and T the combined length. Comparison is
// case-insensitive. Two empty strings are identical (1.0).
func Ratio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(ra, rb)) / float64(total)
}

// matchingChars sums the sizes of the matching blocks found by recursively taking the
// longest common substring and repeating on the pieces to its left and right.
func matchingChars(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] within the given bounds.
// Ties go to the smallest i, then the smallest j.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo

	// prev[j+1] holds the length of the match ending at a[i-1], b[j]
	prev := make([]int, bhi-blo+1)
	cur := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			idx := j - blo + 1
			if a[i] != b[j] {
				cur[idx] = 0
				continue
			}
			k := prev[idx-1] + 1
			cur[idx] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
