package match

import (
	"golang.org/x/text/cases"
)

// popularRunLength is the length of b from which runes occurring in more than
// 1% of it are ignored as match anchors.
const popularRunLength = 200

// SequenceRatio measures how alike two strings are, in [0, 1], after case
// folding. It is the Ratcliff/Obershelp ratio 2*M/T, where T is the total
// rune count and M the number of runes in the matching blocks found by
// repeatedly taking the longest common substring and recursing on both sides.
// Either string being empty yields 0.
func SequenceRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	// A Caser is stateful, so each call folds with its own.
	ra := []rune(cases.Fold().String(a))
	rb := []rune(cases.Fold().String(b))
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matched := newSequenceMatcher(ra, rb).matchingRunes()
	return 2 * float64(matched) / float64(total)
}

type sequenceMatcher struct {
	a, b []rune
	b2j  map[rune][]int // positions of each rune in b, ascending
}

func newSequenceMatcher(a, b []rune) *sequenceMatcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(b); n >= popularRunLength {
		limit := n/100 + 1
		for r, positions := range b2j {
			if len(positions) > limit {
				delete(b2j, r)
			}
		}
	}
	return &sequenceMatcher{a: a, b: b, b2j: b2j}
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside
// a[alo:ahi] and b[blo:bhi], preferring the earliest i and then the earliest j.
func (sm *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range sm.b2j[sm.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Popular runes are not anchors but still extend a block.
	for besti > alo && bestj > blo && sm.a[besti-1] == sm.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && sm.a[besti+bestsize] == sm.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}

// matchingRunes returns the total size of all matching blocks.
func (sm *sequenceMatcher) matchingRunes() int {
	type span struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []span{{0, len(sm.a), 0, len(sm.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := sm.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}
