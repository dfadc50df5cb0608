package acoustid

import (
	"context"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// Matcher ranks caller-supplied candidate fingerprints against a query.
type Matcher interface {
	Search(ctx context.Context, query fingerprint.Fingerprint, duration int, candidates []Candidate) ([]Match, error)
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
