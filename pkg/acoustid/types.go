package acoustid

import (
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// Candidate is a fingerprint the caller wants a query compared against.
type Candidate struct {
	ID       int64                   // Fingerprint ID
	TrackID  int64                   // Track the fingerprint belongs to
	Duration int                     // Audio duration in seconds
	Hashes   fingerprint.Fingerprint // Sub-fingerprints
}

// Match is a candidate that scored above the searcher's minimum.
type Match struct {
	FingerprintID int64
	TrackID       int64
	Score         float64
}
