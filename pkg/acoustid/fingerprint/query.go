package fingerprint

import (
	"slices"
)

const (
	// SilenceHash is the sub-fingerprint chromaprint emits for silent frames.
	SilenceHash uint32 = 627964279

	QueryStart  = 80
	QueryLength = 120
	QueryBits   = 28
	QueryMask   = uint32((1<<QueryBits)-1) << (32 - QueryBits)
)

// StripQuery keeps the QueryBits most significant bits of x.
func StripQuery(x uint32) uint32 {
	return x & QueryMask
}

// ExtractQuery returns the query fingerprint of fp: up to QueryLength
// distinct, stripped, non-silent sub-fingerprints in order of first
// occurrence. Collection starts QueryStart frames in, or earlier when fp has
// too few non-silent frames to fill the query from there.
//
// The result is a new slice sized to its length; an empty or all-silent fp
// yields an empty query.
func ExtractQuery(fp Fingerprint) Fingerprint {
	cleansize := 0
	for _, x := range fp {
		if x != SilenceHash {
			cleansize++
		}
	}
	if cleansize == 0 {
		return Fingerprint{}
	}

	start := max(0, min(cleansize-QueryLength, QueryStart))
	strippedSilence := StripQuery(SilenceHash)

	query := make(Fingerprint, 0, QueryLength)
	for _, x := range fp[start:] {
		if len(query) >= QueryLength {
			break
		}
		if x == SilenceHash {
			continue
		}
		x = StripQuery(x)
		if x == strippedSilence || slices.Contains(query, x) {
			continue
		}
		query = append(query, x)
	}

	out := make(Fingerprint, len(query))
	copy(out, query)
	return out
}
