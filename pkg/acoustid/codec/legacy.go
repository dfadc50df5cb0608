package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// The legacy format stores, for every XOR delta between neighbouring frames,
// the gaps between its set bits. Gaps go into a 3-bit stream terminated by 0
// per frame; gaps of 7 or more are written as 7 in that stream with the
// remainder in a following 5-bit exception stream.
const (
	legacyHeaderSize = 4
	normalBits       = 3
	exceptionBits    = 5
	maxNormalValue   = 1<<normalBits - 1
	maxLegacyLength  = 1<<24 - 1
)

// legacyEncoding is the alphabet chromaprint uses for compressed fingerprints.
var legacyEncoding = base64.RawURLEncoding

// EncodeLegacy compresses hashes in the chromaprint format and returns it
// base64 encoded, as printed by fpcalc.
func EncodeLegacy(hashes fingerprint.Fingerprint, algorithm uint8) (string, error) {
	data, err := CompressLegacy(hashes, algorithm)
	if err != nil {
		return "", err
	}
	return legacyEncoding.EncodeToString(data), nil
}

// DecodeLegacy parses a base64 encoded chromaprint fingerprint and returns
// its hashes and algorithm.
func DecodeLegacy(s string) (fingerprint.Fingerprint, uint8, error) {
	data, err := legacyEncoding.DecodeString(s)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return DecompressLegacy(data)
}

// CompressLegacy is EncodeLegacy without the base64 step.
func CompressLegacy(hashes fingerprint.Fingerprint, algorithm uint8) ([]byte, error) {
	if len(hashes) > maxLegacyLength {
		return nil, fmt.Errorf("fingerprint too long for legacy format: %d frames", len(hashes))
	}

	normal := make([]uint8, 0, len(hashes)*8)
	var exceptions []uint8

	var prev uint32
	for _, h := range hashes {
		x := h ^ prev
		prev = h

		lastBit := 0
		for bit := 1; x != 0; bit, x = bit+1, x>>1 {
			if x&1 == 0 {
				continue
			}
			gap := bit - lastBit
			lastBit = bit
			if gap >= maxNormalValue {
				normal = append(normal, maxNormalValue)
				exceptions = append(exceptions, uint8(gap-maxNormalValue))
			} else {
				normal = append(normal, uint8(gap))
			}
		}
		normal = append(normal, 0)
	}

	n := len(hashes)
	w := bitWriter{buf: make([]byte, legacyHeaderSize, legacyHeaderSize+(len(normal)*normalBits+7)/8+(len(exceptions)*exceptionBits+7)/8)}
	w.buf[0], w.buf[1], w.buf[2], w.buf[3] = algorithm, byte(n>>16), byte(n>>8), byte(n)

	for _, v := range normal {
		w.write(uint32(v), normalBits)
	}
	w.flush()
	for _, v := range exceptions {
		w.write(uint32(v), exceptionBits)
	}
	w.flush()

	return w.buf, nil
}

// DecompressLegacy is DecodeLegacy without the base64 step.
func DecompressLegacy(data []byte) (fingerprint.Fingerprint, uint8, error) {
	if len(data) < legacyHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	algorithm := data[0]
	n := int(data[1])<<16 | int(data[2])<<8 | int(data[3])

	body := data[legacyHeaderSize:]
	r := bitReader{buf: body}
	// the header count is untrusted; size by what the body can hold
	normal := make([]uint8, 0, min(n*8, len(body)*8/normalBits))
	for frames := 0; frames < n; {
		v, ok := r.read(normalBits)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %d of %d frames", ErrTruncated, frames, n)
		}
		if v == 0 {
			frames++
		}
		normal = append(normal, uint8(v))
	}
	r.align()

	for i, v := range normal {
		if v != maxNormalValue {
			continue
		}
		extra, ok := r.read(exceptionBits)
		if !ok {
			return nil, 0, fmt.Errorf("%w: missing exception bits", ErrTruncated)
		}
		normal[i] = v + uint8(extra)
	}

	hashes := make(fingerprint.Fingerprint, n)
	var value uint32
	frame, lastBit := 0, 0
	for _, gap := range normal {
		if gap == 0 {
			if frame > 0 {
				value ^= hashes[frame-1]
			}
			hashes[frame] = value
			frame++
			value, lastBit = 0, 0
			continue
		}
		lastBit += int(gap)
		if lastBit > 32 {
			return nil, 0, fmt.Errorf("corrupt legacy fingerprint: bit %d in frame %d", lastBit, frame)
		}
		value |= 1 << (lastBit - 1)
	}

	return hashes, algorithm, nil
}

// bitWriter appends values least significant bit first.
type bitWriter struct {
	buf   []byte
	acc   uint32
	nbits uint
}

func (w *bitWriter) write(v uint32, width uint) {
	w.acc |= v << w.nbits
	w.nbits += width
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) flush() {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.acc))
	}
	w.acc, w.nbits = 0, 0
}

// bitReader reads values written by bitWriter.
type bitReader struct {
	buf   []byte
	pos   int
	acc   uint32
	nbits uint
}

func (r *bitReader) read(width uint) (uint32, bool) {
	for r.nbits < width {
		if r.pos >= len(r.buf) {
			return 0, false
		}
		r.acc |= uint32(r.buf[r.pos]) << r.nbits
		r.pos++
		r.nbits += 8
	}
	v := r.acc & (1<<width - 1)
	r.acc >>= width
	r.nbits -= width
	return v, true
}

// align drops the bits left in the current byte.
func (r *bitReader) align() {
	r.acc, r.nbits = 0, 0
}
