// Package fpfile reads and writes fingerprint files in the formats the CLI
// accepts: raw JSON arrays, fpcalc output (plain or -json, raw or
// compressed), legacy base64 strings and zstd compressed "Fp" blobs.
package fpfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid"
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/codec"
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatJSON           // {"duration": ..., "fingerprint": [...]} or a bare array
	FormatFpcalc         // DURATION= and FINGERPRINT= lines with raw values
	FormatLegacy         // DURATION= and FINGERPRINT= lines with a base64 fingerprint
	FormatFp             // zstd compressed "Fp" binary
)

var formatNames = map[Format]string{
	FormatJSON:   "json",
	FormatFpcalc: "fpcalc",
	FormatLegacy: "legacy",
	FormatFp:     "fp",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

var ErrUnknownFormat = xerrors.Message("unknown fingerprint format")

// ParseFormat resolves a format name as given on the command line.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return FormatUnknown, xerrors.New(fmt.Errorf("%w: %q", ErrUnknownFormat, name))
}

// File is a decoded fingerprint with whatever metadata its encoding carried.
type File struct {
	Hashes    fingerprint.Fingerprint
	Duration  int   // seconds, 0 if unknown
	Algorithm uint8 // fingerprint algorithm version, 0 if unknown
	Format    Format
}

// Read loads and decodes the fingerprint file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("reading fingerprint file: %w", err))
	}
	f, err := Parse(data)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", path, err))
	}
	return f, nil
}

// Parse detects the encoding of data and decodes it.
func Parse(data []byte) (*File, error) {
	if codec.IsCompressed(data) {
		hashes, version, err := codec.Decompress(data)
		if err != nil {
			return nil, err
		}
		return &File{Hashes: hashes, Algorithm: version, Format: FormatFp}, nil
	}
	if bytes.HasPrefix(data, []byte("Fp")) {
		hashes, version, err := codec.Decode(data)
		if err != nil {
			return nil, err
		}
		return &File{Hashes: hashes, Algorithm: version, Format: FormatFp}, nil
	}

	text := bytes.TrimSpace(data)
	switch {
	case len(text) == 0:
		return nil, xerrors.New(fmt.Errorf("%w: empty input", ErrUnknownFormat))
	case text[0] == '[' || bytes.Equal(text, []byte("null")):
		hashes, err := acoustid.ParseArray(text)
		if err != nil {
			return nil, err
		}
		return &File{Hashes: hashes, Format: FormatJSON}, nil
	case text[0] == '{':
		return parseJSON(text)
	case bytes.Contains(text, []byte("FINGERPRINT=")):
		return parseFpcalc(string(text))
	default:
		hashes, algorithm, err := codec.DecodeLegacy(string(text))
		if err != nil {
			return nil, xerrors.New(fmt.Errorf("%w: %v", ErrUnknownFormat, err))
		}
		return &File{Hashes: hashes, Algorithm: algorithm, Format: FormatLegacy}, nil
	}
}

// fpcalcJSON is the document fpcalc -json prints.
type fpcalcJSON struct {
	Duration    float64         `json:"duration"`
	Fingerprint json.RawMessage `json:"fingerprint"`
}

func parseJSON(text []byte) (*File, error) {
	var doc fpcalcJSON
	if err := json.Unmarshal(text, &doc); err != nil {
		return nil, xerrors.New(fmt.Errorf("decoding fingerprint document: %w", err))
	}

	f := &File{Duration: int(doc.Duration), Format: FormatJSON}
	raw := bytes.TrimSpace(doc.Fingerprint)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, xerrors.New(err)
		}
		hashes, algorithm, err := codec.DecodeLegacy(s)
		if err != nil {
			return nil, err
		}
		f.Hashes, f.Algorithm = hashes, algorithm
		return f, nil
	}

	hashes, err := acoustid.ParseArray(raw)
	if err != nil {
		return nil, err
	}
	f.Hashes = hashes
	return f, nil
}

func parseFpcalc(text string) (*File, error) {
	f := &File{}
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "DURATION":
			d, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, xerrors.New(fmt.Errorf("invalid DURATION %q: %w", value, err))
			}
			f.Duration = int(d)
		case "FINGERPRINT":
			if err := f.parseFingerprintValue(value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// parseFingerprintValue accepts the comma separated list fpcalc -raw prints
// or the base64 string it prints otherwise.
func (f *File) parseFingerprintValue(value string) error {
	if value == "" || strings.ContainsAny(value, ",") || isDecimal(value) {
		f.Format = FormatFpcalc
		f.Hashes = fingerprint.Fingerprint{}
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			x, err := acoustid.SubFingerprint(part)
			if err != nil {
				return xerrors.New(err)
			}
			f.Hashes = append(f.Hashes, x)
		}
		return nil
	}

	hashes, algorithm, err := codec.DecodeLegacy(value)
	if err != nil {
		return err
	}
	f.Hashes, f.Algorithm, f.Format = hashes, algorithm, FormatLegacy
	return nil
}

func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Marshal encodes f in the given format.
func Marshal(f *File, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		hashes := f.Hashes
		if hashes == nil {
			hashes = fingerprint.Fingerprint{}
		}
		doc := struct {
			Duration    int                     `json:"duration"`
			Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
		}{f.Duration, hashes}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, xerrors.New(err)
		}
		return append(data, '\n'), nil
	case FormatFpcalc:
		values := make([]string, len(f.Hashes))
		for i, h := range f.Hashes {
			values[i] = strconv.FormatUint(uint64(h), 10)
		}
		return fmt.Appendf(nil, "DURATION=%d\nFINGERPRINT=%s\n", f.Duration, strings.Join(values, ",")), nil
	case FormatLegacy:
		s, err := codec.EncodeLegacy(f.Hashes, f.Algorithm)
		if err != nil {
			return nil, xerrors.New(err)
		}
		return fmt.Appendf(nil, "DURATION=%d\nFINGERPRINT=%s\n", f.Duration, s), nil
	case FormatFp:
		return codec.Compress(f.Hashes, f.Algorithm), nil
	default:
		return nil, xerrors.New(fmt.Errorf("%w: %d", ErrUnknownFormat, int(format)))
	}
}

// Write encodes f and stores it at path.
func Write(path string, f *File, format Format) error {
	data, err := Marshal(f, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.New(fmt.Errorf("writing fingerprint file: %w", err))
	}
	return nil
}
