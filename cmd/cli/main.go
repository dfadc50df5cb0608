package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid"
	"github.com/himanishpuri/AcousticMatch/pkg/logger"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnvOrDefault(key, strconv.Itoa(defaultValue)))
	if err != nil {
		logger.Warnf("Ignoring %s: %v", key, err)
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnvOrDefault(key, strconv.FormatFloat(defaultValue, 'g', -1, 64)), 64)
	if err != nil {
		logger.Warnf("Ignoring %s: %v", key, err)
		return defaultValue
	}
	return v
}

// searchOptions builds searcher options from the environment; command flags
// are applied on top.
func searchOptions() []acoustid.Option {
	return []acoustid.Option{
		acoustid.WithMaxOffset(getEnvInt("ACOUSTID_MAX_OFFSET", acoustid.DefaultMaxOffset)),
		acoustid.WithMinScore(getEnvFloat("ACOUSTID_MIN_SCORE", acoustid.DefaultMinScore)),
		acoustid.WithWorkers(getEnvInt("ACOUSTID_WORKERS", acoustid.DefaultWorkers)),
	}
}

type command struct {
	run   func(args []string) error
	usage string
}

var commands = map[string]command{
	"compare":  {runCompare, "compare <a> <b>"},
	"compare2": {runCompare2, "compare2 [-max-offset N] <a> <b>"},
	"query":    {runQuery, "query <file>"},
	"simhash":  {runSimhash, "simhash [-shingle N -step M] <file>"},
	"gid":      {runGID, "gid [-version V] <file>"},
	"convert":  {runConvert, "convert -to json|fpcalc|legacy|fp [-o out] <file>"},
	"search":   {runSearch, "search [-min-score S] [-max-offset N] [-good-enough S] <query> <candidate>..."},
	"dedupe":   {runDedupe, "dedupe [-threshold S] <file>..."},
}

var commandOrder = []string{"compare", "compare2", "query", "simhash", "gid", "convert", "search", "dedupe"}

func main() {
	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	log := logger.GetLogger()
	if envErr != nil {
		log.Debugf("No .env loaded: %v", envErr)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage()
		os.Exit(1)
	}

	log.Debugf("Executing command: %s", name)
	if err := cmd.run(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", name, err)
		log.Debugf("%s", xerrors.Sprint(err))
		os.Exit(1)
	}
}

// parseArgs parses fs from args, allowing flags before, between and after
// positional arguments, and returns the positional ones. Everything after a
// "--" terminator is positional.
func parseArgs(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		fs.Parse(args)
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...)
		}
		if len(rest) == 0 {
			return positional
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func printBanner() {
	banner := `
    _                       _   _ ____
   / \   ___ ___  _   _ ___| |_(_)  _ \
  / _ \ / __/ _ \| | | / __| __| | | | |
 / ___ \ (_| (_) | |_| \__ \ |_| | |_| |
/_/   \_\___\___/ \__,_|___/\__|_|____/

      Fingerprint Comparison CLI Tool
`
	fmt.Fprintln(os.Stderr, banner)
}

func printUsage() {
	printBanner()
	w := os.Stderr
	fmt.Fprintln(w, "Usage:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  acoustid %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nFingerprint files may be JSON arrays, fpcalc output (-raw or not, -json or not),")
	fmt.Fprintln(w, "legacy base64 strings or zstd compressed Fp files; the format is detected.")
	fmt.Fprintln(w, "\nEnvironment (also read from .env):")
	fmt.Fprintf(w, "  ACOUSTID_MAX_OFFSET  Alignment bound for compare2/search/dedupe (default: %d)\n", acoustid.DefaultMaxOffset)
	fmt.Fprintf(w, "  ACOUSTID_MIN_SCORE   Minimum search score (default: %g)\n", acoustid.DefaultMinScore)
	fmt.Fprintf(w, "  ACOUSTID_WORKERS     Parallel comparisons (default: %d)\n", acoustid.DefaultWorkers)
	fmt.Fprintln(w, "  LOG_LEVEL            debug, info, warn, error (default: info)")
	fmt.Fprintln(w, "  LOG_FORMAT           json for JSON log lines")
	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, "  fpcalc -raw song.mp3 > song.txt && acoustid query song.txt")
	fmt.Fprintln(w, "  acoustid compare2 -max-offset 0 album.txt excerpt.txt")
	fmt.Fprintln(w, "  acoustid search query.txt library/*.fp")
}
