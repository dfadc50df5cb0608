// Package fingerprint compares chromaprint-style acoustic fingerprints and
// derives the short query fingerprints used for candidate lookup.
//
// A fingerprint is a sequence of 32-bit sub-fingerprints, one per ~1/8 s of
// audio. All functions in this package are pure: they borrow their inputs,
// never modify them and keep no state between calls, so they are safe to call
// from any number of goroutines.
package fingerprint

// Fingerprint is an ordered sequence of sub-fingerprints.
type Fingerprint []uint32

// ToUnsigned reinterprets signed sub-fingerprints (as stored in int4 columns)
// as unsigned values. Bit patterns are preserved.
func ToUnsigned(hashes []int32) Fingerprint {
	fp := make(Fingerprint, len(hashes))
	for i, h := range hashes {
		fp[i] = uint32(h)
	}
	return fp
}

// ToSigned is the inverse of ToUnsigned.
func ToSigned(fp Fingerprint) []int32 {
	hashes := make([]int32, len(fp))
	for i, x := range fp {
		hashes[i] = int32(x)
	}
	return hashes
}
