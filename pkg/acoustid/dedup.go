package acoustid

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// GroupDuplicates clusters fingerprints whose refined score exceeds
// threshold, transitively. It returns only groups with two or more members,
// each sorted ascending and the groups ordered by their first member. A
// threshold of 0 uses DefaultMergeThreshold.
func (s *Searcher) GroupDuplicates(ctx context.Context, fps []fingerprint.Fingerprint, threshold float64) ([][]int, error) {
	if threshold == 0 {
		threshold = DefaultMergeThreshold
	}

	n := len(fps)
	// edges[i] holds every j > i that i merges with.
	edges := make([][]int, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for j := i + 1; j < n; j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if fingerprint.CompareAligned(fps[i], fps[j], s.config.MaxOffset) > threshold {
					edges[i] = append(edges[i], j)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := newDisjointSet(n)
	for i, js := range edges {
		for _, j := range js {
			set.merge(i, j)
		}
	}

	byRoot := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := set.root(i)
		byRoot[r] = append(byRoot[r], i)
	}

	var groups [][]int
	for _, members := range byRoot {
		if len(members) > 1 {
			groups = append(groups, members)
		}
	}
	slices.SortFunc(groups, func(a, b []int) int { return a[0] - b[0] })

	s.log.Infof("Grouped %d fingerprints into %d duplicate groups", n, len(groups))
	return groups, nil
}

type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{parent: make([]int, n), size: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
		d.size[i] = 1
	}
	return d
}

func (d *disjointSet) root(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSet) merge(a, b int) {
	ra, rb := d.root(a), d.root(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}
