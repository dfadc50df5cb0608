package acoustid

// Part selects a 1-based, inclusive-start range of the query fingerprint that
// a candidate's query fingerprint must overlap to be scored.
type Part struct {
	Start  int
	Length int
}

// Defaults used by NewSearcher.
const (
	DefaultMaxOffset      = 80
	DefaultMinScore       = 0.3
	DefaultMaxLengthDiff  = 7
	DefaultMergeThreshold = 0.95
	DefaultWorkers        = 8
)

// DefaultParts searches the first 20 query values, then the next 100.
var DefaultParts = []Part{{Start: 1, Length: 20}, {Start: 21, Length: 100}}

type Config struct {
	MaxOffset       int
	MinScore        float64
	MaxLengthDiff   int
	GoodEnoughScore float64
	Parts           []Part
	Workers         int
	Logger          Logger
}

type Option func(*Config)

// WithMaxOffset bounds the alignment offset CompareAligned may choose.
func WithMaxOffset(offset int) Option {
	return func(c *Config) {
		c.MaxOffset = offset
	}
}

func WithMinScore(score float64) Option {
	return func(c *Config) {
		c.MinScore = score
	}
}

// WithMaxLengthDiff sets how many seconds a candidate's duration may differ
// from the query's.
func WithMaxLengthDiff(seconds int) Option {
	return func(c *Config) {
		c.MaxLengthDiff = seconds
	}
}

// WithGoodEnoughScore stops the search after the first part producing a
// better score. 0 searches every part.
func WithGoodEnoughScore(score float64) Option {
	return func(c *Config) {
		c.GoodEnoughScore = score
	}
}

func WithParts(parts ...Part) Option {
	return func(c *Config) {
		c.Parts = parts
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func defaultConfig() *Config {
	return &Config{
		MaxOffset:     DefaultMaxOffset,
		MinScore:      DefaultMinScore,
		MaxLengthDiff: DefaultMaxLengthDiff,
		Parts:         DefaultParts,
		Workers:       DefaultWorkers,
		Logger:        nil,
	}
}
