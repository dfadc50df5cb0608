package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	"github.com/mdobak/go-xerrors"
	"gonum.org/v1/gonum/stat"

	"github.com/himanishpuri/AcousticMatch/internal/fpfile"
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid"
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/codec"
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
	"github.com/himanishpuri/AcousticMatch/pkg/logger"
)

func requireArgs(fs *flag.FlagSet, args []string, n int) error {
	if len(args) != n {
		fs.Usage()
		return xerrors.New(fmt.Errorf("expected %d file argument(s), got %d", n, len(args)))
	}
	return nil
}

func readPair(paths []string) (*fpfile.File, *fpfile.File, error) {
	a, err := fpfile.Read(paths[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := fpfile.Read(paths[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func runCompare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	paths := parseArgs(fs, args)
	if err := requireArgs(fs, paths, 2); err != nil {
		return err
	}

	a, b, err := readPair(paths)
	if err != nil {
		return err
	}
	fmt.Printf("%.6f\n", fingerprint.Compare(a.Hashes, b.Hashes))
	return nil
}

func runCompare2(args []string) error {
	fs := flag.NewFlagSet("compare2", flag.ExitOnError)
	maxOffset := fs.Int("max-offset", getEnvInt("ACOUSTID_MAX_OFFSET", acoustid.DefaultMaxOffset), "Largest alignment offset considered; 0 for unbounded")
	verbose := fs.Bool("v", false, "Also print the estimated offset")
	paths := parseArgs(fs, args)
	if err := requireArgs(fs, paths, 2); err != nil {
		return err
	}

	a, b, err := readPair(paths)
	if err != nil {
		return err
	}

	score := fingerprint.CompareAligned(a.Hashes, b.Hashes, *maxOffset)
	fmt.Printf("%.6f\n", score)
	if *verbose {
		if offset, votes, ok := fingerprint.EstimateOffset(a.Hashes, b.Hashes, *maxOffset); ok {
			fmt.Printf("offset: %d (%d votes)\n", offset, votes)
		} else {
			fmt.Println("offset: none")
		}
	}
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	paths := parseArgs(fs, args)
	if err := requireArgs(fs, paths, 1); err != nil {
		return err
	}

	f, err := fpfile.Read(paths[0])
	if err != nil {
		return err
	}
	q := fingerprint.ExtractQuery(f.Hashes)
	logger.Debugf("Extracted %d query values from %d sub-fingerprints", len(q), len(f.Hashes))
	return printJSON(q)
}

func runSimhash(args []string) error {
	fs := flag.NewFlagSet("simhash", flag.ExitOnError)
	shingle := fs.Int("shingle", 0, "Window size; 0 hashes the whole fingerprint")
	step := fs.Int("step", 0, "Window step (default: the window size)")
	paths := parseArgs(fs, args)
	if err := requireArgs(fs, paths, 1); err != nil {
		return err
	}

	f, err := fpfile.Read(paths[0])
	if err != nil {
		return err
	}

	if *shingle <= 0 {
		fmt.Println(fingerprint.Simhash(f.Hashes))
		return nil
	}
	if *step <= 0 {
		*step = *shingle
	}
	return printJSON(fingerprint.ShingledSimhashes(f.Hashes, *shingle, *step))
}

func runGID(args []string) error {
	fs := flag.NewFlagSet("gid", flag.ExitOnError)
	version := fs.Int("version", -1, "Fingerprint algorithm version (default: taken from the file, else 1)")
	paths := parseArgs(fs, args)
	if err := requireArgs(fs, paths, 1); err != nil {
		return err
	}

	f, err := fpfile.Read(paths[0])
	if err != nil {
		return err
	}

	v := uint32(1)
	switch {
	case *version >= 0:
		v = uint32(*version)
	case f.Algorithm != 0:
		v = uint32(f.Algorithm)
	}
	fmt.Println(codec.GID(v, f.Hashes))
	return nil
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	to := fs.String("to", "json", "Output format: json, fpcalc, legacy or fp")
	out := fs.String("o", "", "Output file (default: stdout)")
	algorithm := fs.Int("algorithm", -1, "Override the algorithm version written to legacy and fp output")
	paths := parseArgs(fs, args)
	if err := requireArgs(fs, paths, 1); err != nil {
		return err
	}

	format, err := fpfile.ParseFormat(*to)
	if err != nil {
		return err
	}
	f, err := fpfile.Read(paths[0])
	if err != nil {
		return err
	}
	if *algorithm >= 0 {
		f.Algorithm = uint8(*algorithm)
	}
	logger.Debugf("Converting %s from %s to %s", paths[0], f.Format, format)

	if *out != "" {
		return fpfile.Write(*out, f, format)
	}
	data, err := fpfile.Marshal(f, format)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	minScore := fs.Float64("min-score", getEnvFloat("ACOUSTID_MIN_SCORE", acoustid.DefaultMinScore), "Minimum score of a reported match")
	maxOffset := fs.Int("max-offset", getEnvInt("ACOUSTID_MAX_OFFSET", acoustid.DefaultMaxOffset), "Largest alignment offset considered; 0 for unbounded")
	maxLengthDiff := fs.Int("max-length-diff", acoustid.DefaultMaxLengthDiff, "Allowed duration difference in seconds; negative disables the filter")
	goodEnough := fs.Float64("good-enough", 0, "Stop after the first query part scoring above this")
	paths := parseArgs(fs, args)
	if len(paths) < 2 {
		fs.Usage()
		return xerrors.New(fmt.Errorf("expected a query and at least one candidate"))
	}

	query, err := fpfile.Read(paths[0])
	if err != nil {
		return err
	}
	candidates := make([]acoustid.Candidate, 0, len(paths)-1)
	for i, path := range paths[1:] {
		f, err := fpfile.Read(path)
		if err != nil {
			return err
		}
		candidates = append(candidates, acoustid.Candidate{
			ID:       int64(i + 1),
			TrackID:  int64(i + 1),
			Duration: f.Duration,
			Hashes:   f.Hashes,
		})
	}

	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "max-length-diff" {
			explicit = true
		}
	})
	lengthDiff := lengthDiffFor(*maxLengthDiff, explicit, query.Duration, candidates)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := append(searchOptions(),
		acoustid.WithMinScore(*minScore),
		acoustid.WithMaxOffset(*maxOffset),
		acoustid.WithMaxLengthDiff(lengthDiff),
		acoustid.WithGoodEnoughScore(*goodEnough),
	)
	searcher := acoustid.NewSearcher(opts...)
	matches, err := searcher.Search(ctx, query.Hashes, query.Duration, candidates)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}

	scores := make([]float64, len(matches))
	for i, m := range matches {
		scores[i] = m.Score
		fmt.Printf("%d. %s\n", i+1, paths[m.FingerprintID])
		fmt.Printf("   Score: %.4f\n", m.Score)
	}
	printSummary(scores)
	return nil
}

// lengthDiffFor disables the duration filter when the query or a candidate
// came from a file without a duration, unless -max-length-diff was given.
func lengthDiffFor(maxLengthDiff int, explicit bool, queryDuration int, candidates []acoustid.Candidate) int {
	if explicit {
		return maxLengthDiff
	}
	missing := queryDuration == 0 || slices.ContainsFunc(candidates, func(c acoustid.Candidate) bool {
		return c.Duration == 0
	})
	if missing {
		logger.Infof("Some fingerprints carry no duration, not filtering by length")
		return -1
	}
	return maxLengthDiff
}

// printSummary prints the spread of match scores.
func printSummary(scores []float64) {
	if len(scores) < 2 {
		return
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(scores, nil)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	fmt.Printf("\n%d matches, mean %.4f, median %.4f, stddev %.4f\n", len(scores), mean, median, std)
}

func runDedupe(args []string) error {
	fs := flag.NewFlagSet("dedupe", flag.ExitOnError)
	threshold := fs.Float64("threshold", acoustid.DefaultMergeThreshold, "Score above which two files are duplicates")
	paths := parseArgs(fs, args)
	if len(paths) < 2 {
		fs.Usage()
		return xerrors.New(fmt.Errorf("expected at least two files"))
	}

	fps := make([]fingerprint.Fingerprint, len(paths))
	for i, path := range paths {
		f, err := fpfile.Read(path)
		if err != nil {
			return err
		}
		fps[i] = f.Hashes
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	groups, err := acoustid.NewSearcher(searchOptions()...).GroupDuplicates(ctx, fps, *threshold)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		fmt.Println("No duplicates found")
		return nil
	}
	for i, group := range groups {
		fmt.Printf("Group %d (keep %s):\n", i+1, filepath.Base(paths[group[0]]))
		for _, idx := range group {
			fmt.Printf("   %s\n", paths[idx])
		}
	}
	return nil
}
