package fingerprint

import (
	"math"
)

const (
	// MaxBitError is the largest Hamming distance at which two
	// sub-fingerprints still count as matching in Compare.
	MaxBitError = 2
	// MaxAlignOffset bounds the alignment search window of Compare.
	MaxAlignOffset = 120

	MatchBits = 14
	matchKeys = 1 << MatchBits

	// overlaps shorter than this many 64-bit words are penalized
	minConfidentSize = 200
)

// matchKey returns the top MatchBits bits of a sub-fingerprint.
func matchKey(x uint32) uint32 {
	return x >> (32 - MatchBits)
}

// Compare scores how similar a and b are by finding the alignment offset
// with the most sub-fingerprint pairs within MaxBitError bits of each other.
// The result is that count divided by the length of the shorter input, in
// [0, 1]. Empty inputs score 0.
func Compare(a, b Fingerprint) float64 {
	asize, bsize := len(a), len(b)
	if asize == 0 || bsize == 0 {
		return 0
	}

	// counts[i-j+bsize] is the number of matching pairs at offset i-j
	counts := make([]int, asize+bsize+1)
	for i := 0; i < asize; i++ {
		jbegin := max(0, i-MaxAlignOffset)
		jend := min(bsize, i+MaxAlignOffset)
		for j := jbegin; j < jend; j++ {
			if PopCount32(a[i]^b[j]) <= MaxBitError {
				counts[i-j+bsize]++
			}
		}
	}

	topcount := 0
	for _, c := range counts {
		if c > topcount {
			topcount = c
		}
	}

	return float64(topcount) / float64(min(asize, bsize))
}

// position is the last index at which a match key was seen.
type position struct {
	index int
	ok    bool
}

// lastPositions maps every match key to the last index of fp holding it.
func lastPositions(fp Fingerprint) []position {
	positions := make([]position, matchKeys)
	for i, x := range fp {
		positions[matchKey(x)] = position{index: i, ok: true}
	}
	return positions
}

// EstimateOffset guesses how far b is shifted relative to a. Every match key
// present in both fingerprints votes for the difference of its last positions
// (a's minus b's); differences outside [-maxOffset, maxOffset] are ignored
// unless maxOffset is 0. It returns the winning offset and its vote count.
// When no key votes, ok is false.
func EstimateOffset(a, b Fingerprint, maxOffset int) (offset, votes int, ok bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, false
	}

	bsize := len(b)
	apos := lastPositions(a)
	bpos := lastPositions(b)
	counts := make([]int, len(a)+bsize+1)

	topcount, topoffset := 0, 0
	for key := 0; key < matchKeys; key++ {
		pa, pb := apos[key], bpos[key]
		if !pa.ok || !pb.ok {
			continue
		}
		diff := pa.index - pb.index
		if maxOffset != 0 && (diff < -maxOffset || diff > maxOffset) {
			continue
		}
		counts[diff+bsize]++
		if counts[diff+bsize] > topcount {
			topcount = counts[diff+bsize]
			topoffset = diff
		}
	}

	if topcount == 0 {
		return 0, 0, false
	}
	return topoffset, topcount, true
}

// CompareAligned is the stricter similarity measure. It aligns a and b with
// EstimateOffset, then measures the bit error rate over the overlapping part,
// reading two consecutive sub-fingerprints as one 64-bit word. The score is
// the overlap coverage relative to the shorter input times the bit agreement
// (1 for identical bits, 0 for random ones, negative for worse), damped for
// overlaps shorter than 400 sub-fingerprints.
//
// maxOffset limits the alignment search; 0 means unbounded. When no match
// key votes, the fingerprints are correlated at offset 0. Empty inputs
// score 0.
func CompareAligned(a, b Fingerprint, maxOffset int) float64 {
	asize, bsize := len(a), len(b)
	if asize == 0 || bsize == 0 {
		return 0
	}

	// without votes the offset is 0
	offset, _, _ := EstimateOffset(a, b, maxOffset)

	minsize := min(asize, bsize) &^ 1
	if offset < 0 {
		b = b[-offset:]
	} else {
		a = a[offset:]
	}

	size := min(len(a), len(b)) / 2
	if size == 0 {
		return 0
	}

	biterror := 0
	for i := 0; i < size; i++ {
		biterror += PopCount64(word64(a, i) ^ word64(b, i))
	}

	score := (float64(size) * 2 / float64(minsize)) * (1 - 2*float64(biterror)/float64(64*size))
	if size < minConfidentSize {
		score *= math.Pow(math.Log(float64(size))/math.Log(minConfidentSize), 1.5)
	}
	return score
}

// word64 joins sub-fingerprints 2i and 2i+1 into one little-endian word.
func word64(fp Fingerprint, i int) uint64 {
	return uint64(fp[2*i]) | uint64(fp[2*i+1])<<32
}
