package acoustid

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
	"github.com/himanishpuri/AcousticMatch/pkg/logger"
)

// Searcher is the default Matcher. It narrows candidates by duration and by
// query overlap before running the refined comparison on each survivor.
type Searcher struct {
	log    Logger
	config *Config
}

func NewSearcher(opts ...Option) *Searcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Searcher{
		log:    cfg.Logger,
		config: cfg,
	}
}

// Config returns a copy of the searcher's settings.
func (s *Searcher) Config() Config {
	return *s.config
}

type candidateQuery struct {
	candidate *Candidate
	query     fingerprint.Fingerprint
}

// Search returns the candidates scoring above MinScore against query, best
// first, ties broken by ascending fingerprint ID. Each candidate appears at
// most once. A query without usable values matches nothing.
func (s *Searcher) Search(ctx context.Context, query fingerprint.Fingerprint, duration int, candidates []Candidate) ([]Match, error) {
	q := fingerprint.ExtractQuery(query)
	if len(q) == 0 {
		s.log.Debugf("Query has no usable sub-fingerprints")
		return nil, nil
	}

	eligible := make([]candidateQuery, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if s.config.MaxLengthDiff >= 0 && abs(c.Duration-duration) > s.config.MaxLengthDiff {
			continue
		}
		eligible = append(eligible, candidateQuery{candidate: c, query: fingerprint.ExtractQuery(c.Hashes)})
	}
	s.log.Debugf("%d of %d candidates within %ds of %ds", len(eligible), len(candidates), s.config.MaxLengthDiff, duration)

	var matches []Match
	scored := make(map[int64]struct{})

	for _, part := range s.config.Parts {
		sub := partOf(q, part)
		if len(sub) == 0 {
			continue
		}

		var batch []candidateQuery
		for _, cq := range eligible {
			if _, done := scored[cq.candidate.ID]; done {
				continue
			}
			if overlaps(cq.query, sub) {
				batch = append(batch, cq)
			}
		}
		if len(batch) == 0 {
			continue
		}

		scores, err := s.scoreAll(ctx, query, batch)
		if err != nil {
			return nil, err
		}

		best := 0.0
		for i, cq := range batch {
			scored[cq.candidate.ID] = struct{}{}
			if scores[i] <= s.config.MinScore {
				continue
			}
			matches = append(matches, Match{
				FingerprintID: cq.candidate.ID,
				TrackID:       cq.candidate.TrackID,
				Score:         scores[i],
			})
			best = max(best, scores[i])
		}
		s.log.Debugf("Part %d+%d scored %d candidates, best %.4f", part.Start, part.Length, len(batch), best)

		if s.config.GoodEnoughScore > 0 && best > s.config.GoodEnoughScore {
			break
		}
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.FingerprintID, b.FingerprintID)
	})

	s.log.Infof("Found %d matches", len(matches))
	return matches, nil
}

func (s *Searcher) scoreAll(ctx context.Context, query fingerprint.Fingerprint, batch []candidateQuery) ([]float64, error) {
	scores := make([]float64, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, cq := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = fingerprint.CompareAligned(cq.candidate.Hashes, query, s.config.MaxOffset)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// partOf slices q the way a 1-based array subscript would, clamping at the
// end of q.
func partOf(q fingerprint.Fingerprint, p Part) fingerprint.Fingerprint {
	start := max(p.Start, 1) - 1
	if start >= len(q) || p.Length <= 0 {
		return nil
	}
	end := min(start+p.Length, len(q))
	return q[start:end]
}

func overlaps(a, b fingerprint.Fingerprint) bool {
	set := make(map[uint32]struct{}, len(b))
	for _, x := range b {
		set[x] = struct{}{}
	}
	for _, x := range a {
		if _, ok := set[x]; ok {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
