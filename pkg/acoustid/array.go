package acoustid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mdobak/go-xerrors"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// ParseArray decodes a JSON array of sub-fingerprints. Values may be given
// signed (int4, as databases store them) or unsigned. A JSON null or an
// empty array is an empty fingerprint.
//
// Nested arrays and non-array values fail with ErrInvalidShape, null
// elements with ErrNullElement.
func ParseArray(data []byte) (fingerprint.Fingerprint, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, xerrors.New(fmt.Errorf("decoding fingerprint array: %w", err))
	}
	if dec.More() {
		return nil, xerrors.New(fmt.Errorf("decoding fingerprint array: trailing data"))
	}

	switch v := raw.(type) {
	case nil:
		return fingerprint.Fingerprint{}, nil
	case []any:
		return FromValues(v)
	default:
		return nil, xerrors.New(fmt.Errorf("got %T: %w", raw, ErrInvalidShape))
	}
}

// FromValues converts already decoded array elements, as produced by
// encoding/json with UseNumber, into a fingerprint.
func FromValues(values []any) (fingerprint.Fingerprint, error) {
	fp := make(fingerprint.Fingerprint, len(values))
	for i, e := range values {
		switch n := e.(type) {
		case nil:
			return nil, xerrors.New(fmt.Errorf("element %d: %w", i, ErrNullElement))
		case []any, map[string]any:
			return nil, xerrors.New(fmt.Errorf("element %d: %w", i, ErrInvalidShape))
		case json.Number:
			x, err := SubFingerprint(n.String())
			if err != nil {
				return nil, xerrors.New(fmt.Errorf("element %d: %w", i, err))
			}
			fp[i] = x
		case float64:
			if n != math.Trunc(n) {
				return nil, xerrors.New(fmt.Errorf("element %d: %v is not an integer", i, n))
			}
			x, err := SubFingerprint(strconv.FormatFloat(n, 'f', 0, 64))
			if err != nil {
				return nil, xerrors.New(fmt.Errorf("element %d: %w", i, err))
			}
			fp[i] = x
		default:
			return nil, xerrors.New(fmt.Errorf("element %d: %T is not an integer", i, e))
		}
	}
	return fp, nil
}

// SubFingerprint parses one decimal sub-fingerprint in the int32 or uint32
// range. Negative values are reinterpreted as their unsigned bit pattern.
func SubFingerprint(s string) (uint32, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sub-fingerprint %q: %w", s, err)
	}
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, fmt.Errorf("sub-fingerprint %d out of 32-bit range", v)
	}
	return uint32(v), nil
}
